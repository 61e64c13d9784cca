// Package mpv talks to a running mpv instance over its JSON IPC socket
// (--input-ipc-server).
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// ErrClosed is returned by commands issued after the connection ended.
var ErrClosed = errors.New("mpv connection closed")

// CommandError is mpv's answer to a command that did not succeed.
type CommandError struct {
	Command string
	Message string // mpv's error string, e.g. "property unavailable"
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Message)
}

// Event is an asynchronous message from mpv.
type Event struct {
	Name   string          `json:"event"`
	ID     int64           `json:"id"`   // observer id of a property-change
	Prop   string          `json:"name"` // property name of a property-change
	Data   json.RawMessage `json:"data"`
	Args   []string        `json:"args"`   // client-message arguments
	Reason string          `json:"reason"` // end-file reason
}

// Float decodes the event data as a number. Null data (property
// unavailable) reports false.
func (e Event) Float() (float64, bool) {
	var v *float64
	if err := json.Unmarshal(e.Data, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

// Bool decodes the event data as a flag. Null data reports false.
func (e Event) Bool() (value, ok bool) {
	var v *bool
	if err := json.Unmarshal(e.Data, &v); err != nil || v == nil {
		return false, false
	}
	return *v, true
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type message struct {
	Event
	RequestID *int64 `json:"request_id"`
	Error     string `json:"error"`
}

type response struct {
	data json.RawMessage
	err  string
}

// Client is a connection to mpv. Commands may be issued from any goroutine.
type Client struct {
	conn net.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan response
	closed  bool
	err     error

	// events are queued without bound so the reader never waits on the consumer.
	qmu       sync.Mutex
	queue     []Event
	readDone  bool
	notify    chan struct{}
	events    chan Event
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the IPC socket at path.
func Dial(ctx context.Context, path string, logger *slog.Logger) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, logger), nil
}

// NewClient starts a client on an established connection.
func NewClient(conn net.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{
		conn:    conn,
		log:     logger,
		pending: make(map[int64]chan response),
		notify:  make(chan struct{}, 1),
		events:  make(chan Event),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	go c.pump()
	return c
}

// Events returns the event stream. It is closed once the connection has
// ended and every received event has been delivered.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close ends the connection and stops event delivery.
func (c *Client) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.conn.Close()
}

// Command sends a command and waits for its reply.
func (c *Client) Command(ctx context.Context, args ...any) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("mpv: empty command")
	}
	name := fmt.Sprint(args[0])

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	ch := make(chan response, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		c.forget(id)
		return nil, err
	}
	payload = append(payload, '\n')

	if err := c.write(ctx, payload); err != nil {
		c.forget(id)
		return nil, err
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		if resp.err != "success" {
			return nil, &CommandError{Command: name, Message: resp.err}
		}
		return resp.data, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *Client) write(ctx context.Context, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{}) //nolint:errcheck // best effort reset
	}
	_, err := c.conn.Write(payload)
	return err
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// ObserveProperty subscribes to changes of name, reported as
// property-change events carrying id.
func (c *Client) ObserveProperty(ctx context.Context, id int64, name string) error {
	_, err := c.Command(ctx, "observe_property", id, name)
	return err
}

// GetProperty reads name into v.
func (c *Client) GetProperty(ctx context.Context, name string, v any) error {
	data, err := c.Command(ctx, "get_property", name)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SetProperty sets name to value.
func (c *Client) SetProperty(ctx context.Context, name string, value any) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// ShowText displays text on the OSD for d.
func (c *Client) ShowText(ctx context.Context, text string, d time.Duration) error {
	_, err := c.Command(ctx, "show-text", text, d.Milliseconds())
	return err
}

func (c *Client) readLoop() {
	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatch(line)
		}
		if err != nil {
			c.finish(err)
			return
		}
	}
}

func (c *Client) dispatch(line []byte) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		c.log.Debug("ignoring malformed mpv message", "error", err)
		return
	}

	if msg.Name != "" {
		c.qmu.Lock()
		c.queue = append(c.queue, msg.Event)
		c.qmu.Unlock()
		c.wake()
		return
	}

	if msg.RequestID == nil {
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[*msg.RequestID]
	delete(c.pending, *msg.RequestID)
	c.mu.Unlock()
	if ok {
		ch <- response{data: msg.Data, err: msg.Error}
	}
}

func (c *Client) finish(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.err = err
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()

		c.qmu.Lock()
		c.readDone = true
		c.qmu.Unlock()
		c.wake()

		c.log.Debug("mpv connection ended", "error", err)
		close(c.done)
	})
}

func (c *Client) wake() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Client) pump() {
	defer close(c.events)
	for {
		c.qmu.Lock()
		batch := c.queue
		c.queue = nil
		ended := c.readDone
		c.qmu.Unlock()

		for _, ev := range batch {
			select {
			case c.events <- ev:
			case <-c.stop:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if ended {
			return
		}
		select {
		case <-c.notify:
		case <-c.stop:
			return
		}
	}
}

package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
)

// FakePlayer answers the IPC protocol on one end of a net.Pipe. It keeps a
// property map, records every command and, like mpv, reports changes of
// observed properties as property-change events. It is a test double.
type FakePlayer struct {
	conn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	props    map[string]any
	observed map[string]int64
	failures map[string]string
	commands [][]any
	changed  chan struct{}
	done     chan struct{}
}

// NewFakePlayer starts a fake player and returns the connection a Client
// should use.
func NewFakePlayer() (*FakePlayer, net.Conn) {
	server, client := net.Pipe()
	f := &FakePlayer{
		conn:     server,
		props:    make(map[string]any),
		observed: make(map[string]int64),
		failures: make(map[string]string),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go f.serve()
	return f, client
}

// SetProperty changes a property as the user would, notifying observers.
func (f *FakePlayer) SetProperty(name string, value any) {
	f.mu.Lock()
	f.props[name] = value
	id, observed := f.observed[name]
	f.mu.Unlock()
	if observed {
		_ = f.Emit(map[string]any{"event": "property-change", "id": id, "name": name, "data": value})
	}
}

// Property returns the current value of name.
func (f *FakePlayer) Property(name string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[name]
}

// Fail makes every later command named cmd fail with msg.
func (f *FakePlayer) Fail(cmd, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[cmd] = msg
}

// Commands returns the commands received so far.
func (f *FakePlayer) Commands() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

// Changed is signalled after every command the player handles.
func (f *FakePlayer) Changed() <-chan struct{} {
	return f.changed
}

// Emit sends an event to the client.
func (f *FakePlayer) Emit(ev map[string]any) error {
	return f.send(ev)
}

// Close drops the connection, as mpv does when it quits.
func (f *FakePlayer) Close() error {
	return f.conn.Close()
}

// Done is closed when the fake stops serving.
func (f *FakePlayer) Done() <-chan struct{} {
	return f.done
}

func (f *FakePlayer) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, err = f.conn.Write(append(b, '\n'))
	return err
}

func (f *FakePlayer) serve() {
	defer close(f.done)
	r := bufio.NewReader(f.conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			return
		}
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(line, &req); err != nil || len(req.Command) == 0 {
			continue
		}
		f.handle(req.RequestID, req.Command)
		select {
		case f.changed <- struct{}{}:
		default:
		}
	}
}

func (f *FakePlayer) handle(id int64, cmd []any) {
	name := fmt.Sprint(cmd[0])

	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	failure := f.failures[name]
	f.mu.Unlock()

	if failure != "" {
		_ = f.send(map[string]any{"request_id": id, "error": failure})
		return
	}

	switch name {
	case "get_property":
		prop := fmt.Sprint(arg(cmd, 1))
		f.mu.Lock()
		v, ok := f.props[prop]
		f.mu.Unlock()
		if !ok {
			_ = f.send(map[string]any{"request_id": id, "error": "property unavailable"})
			return
		}
		_ = f.send(map[string]any{"request_id": id, "error": "success", "data": v})

	case "set_property":
		prop := fmt.Sprint(arg(cmd, 1))
		_ = f.send(map[string]any{"request_id": id, "error": "success"})
		f.SetProperty(prop, arg(cmd, 2))

	case "observe_property":
		prop := fmt.Sprint(arg(cmd, 2))
		obsID, _ := arg(cmd, 1).(float64)
		f.mu.Lock()
		f.observed[prop] = int64(obsID)
		f.mu.Unlock()
		_ = f.send(map[string]any{"request_id": id, "error": "success"})

	default:
		_ = f.send(map[string]any{"request_id": id, "error": "success"})
	}
}

func arg(cmd []any, i int) any {
	if i < len(cmd) {
		return cmd[i]
	}
	return nil
}

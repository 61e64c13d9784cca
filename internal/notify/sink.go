package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
)

const (
	defaultQueue = 8
	callTimeout  = 2 * time.Second
)

// Sink displays a short message for about d. Failures are not reported.
type Sink interface {
	Notice(message string, d time.Duration)
}

type notice struct {
	message string
	d       time.Duration
}

// DesktopSink turns notices into desktop notifications. Notices are sent
// from a background goroutine, so Notice never waits on the notification
// server. Each notice replaces the previous one so skips don't pile up.
type DesktopSink struct {
	n   Notifier
	log *slog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan notice
	done   chan struct{}

	// lastID is owned by the run goroutine, and by Close once it has exited.
	lastID uint32
}

// NewDesktopSink starts a sink sending through n. Close must be called to
// stop it.
func NewDesktopSink(n Notifier, logger *slog.Logger) *DesktopSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &DesktopSink{
		n:    n,
		log:  logger,
		ch:   make(chan notice, defaultQueue),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

// Notice queues message without blocking. It is dropped when the queue is
// full or the sink is closed.
func (s *DesktopSink) Notice(message string, d time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- notice{message: message, d: d}:
	default:
		s.log.Debug("notice queue full, dropping notice", "message", message)
	}
}

// Close sends the queued notices, then removes the last one from the
// screen.
func (s *DesktopSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	<-s.done

	if s.lastID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := s.n.Dismiss(ctx, s.lastID); err != nil {
		s.log.Debug(errmsg.Format(errmsg.OpNotice, err), "id", s.lastID)
	}
	s.lastID = 0
}

func (s *DesktopSink) run() {
	defer close(s.done)
	for nt := range s.ch {
		s.send(nt)
	}
}

func (s *DesktopSink) send(nt notice) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	id, err := s.n.Notify(ctx, Notification{
		Title:      "SponsorBlock",
		Body:       nt.message,
		Icon:       "mpv",
		Category:   Category,
		Timeout:    int32(nt.d.Milliseconds()),
		ReplacesID: s.lastID,
		Urgency:    UrgencyLow,
	})
	if err != nil {
		s.log.Debug(errmsg.Format(errmsg.OpNotice, err))
		return
	}
	s.lastID = id
}

// Multi fans a notice out to every sink.
type Multi []Sink

func (m Multi) Notice(message string, d time.Duration) {
	for _, s := range m {
		s.Notice(message, d)
	}
}

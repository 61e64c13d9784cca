package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
)

const (
	defaultBuffer = 64
	maxBatch      = 32
	writeTimeout  = 5 * time.Second
)

// Writer is the persistence side of a Recorder.
type Writer interface {
	Record(ctx context.Context, skips []Skip) error
}

// Recorder queues skips and writes them in batches on a background
// goroutine so the playback path never waits on the database.
type Recorder struct {
	w   Writer
	log *slog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan Skip
	done   chan struct{}
}

// NewRecorder starts a recorder writing to w. buffer is the queue capacity;
// skips arriving while it is full are dropped.
func NewRecorder(w Writer, buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Recorder{
		w:    w,
		log:  logger,
		ch:   make(chan Skip, buffer),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordSkip queues s without blocking.
func (r *Recorder) RecordSkip(s Skip) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- s:
	default:
		r.log.Warn("statistics queue full, dropping skip", "video", s.VideoID)
	}
}

// Close writes everything still queued and stops the recorder.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) run() {
	defer close(r.done)

	for s := range r.ch {
		batch := []Skip{s}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-r.ch:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		r.write(batch)
	}
}

func (r *Recorder) write(batch []Skip) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.w.Record(ctx, batch); err != nil {
		r.log.Error(errmsg.Format(errmsg.OpRecordStats, err), "count", len(batch))
		return
	}
	r.log.Debug("recorded skips", "count", len(batch))
}

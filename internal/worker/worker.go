// Package worker runs the background segment lookup for the video being
// played and publishes its result to the playback controller.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
	"github.com/llehouerou/mpv-sponsorblock/internal/segments"
	"github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"
)

// State is the lifecycle of the shared lookup result.
type State int

const (
	// StateAbsent: nothing loaded, lookup failed, or no segments exist.
	StateAbsent State = iota
	// StatePending: a lookup is in flight.
	StatePending
	// StateReady: segments are available.
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "Absent"
	case StatePending:
		return "Pending"
	case StateReady:
		return "Ready"
	default:
		return "Unknown"
	}
}

// Options configures a Worker.
type Options struct {
	// Timeout bounds a single lookup. Zero means no deadline.
	Timeout time.Duration
	Logger  *slog.Logger
	// OnReady is called from the worker goroutine once a lookup has
	// published its result (ready or absent). gen identifies the Start
	// call that produced it; compare with Generation to detect a result
	// superseded in the meantime. It must not block.
	OnReady func(videoID string, gen uint64)
}

type task struct {
	gen     uint64
	videoID string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Worker owns at most one lookup task at a time. Start and Cancel are meant
// to be called from the player event loop; State and Index may be called
// from anywhere.
type Worker struct {
	fetch   sponsorblock.FetchFunc
	timeout time.Duration
	onReady func(string, uint64)
	log     *slog.Logger

	// taskMu serializes Start and Cancel. It is never held by the task itself.
	taskMu sync.Mutex
	task   *task

	// mu guards the published result. It is held only to read or publish.
	mu      sync.Mutex
	gen     uint64
	state   State
	set     *segments.Set
	videoID string
}

// New creates a worker resolving video IDs through fetch.
func New(fetch sponsorblock.FetchFunc, opts Options) *Worker {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{
		fetch:   fetch,
		timeout: opts.Timeout,
		onReady: opts.OnReady,
		log:     log,
	}
}

// Start cancels any running lookup and begins a new one for videoID.
func (w *Worker) Start(videoID string) {
	w.taskMu.Lock()
	defer w.taskMu.Unlock()

	w.stopLocked()

	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.state = StatePending
	w.set = nil
	w.videoID = videoID
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		gen:     gen,
		videoID: videoID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	w.task = t

	w.log.Debug("fetching segments", "video", videoID, "generation", gen)
	go w.run(ctx, t)
}

// Cancel stops the running lookup, waits for it to exit and clears the
// published result. No write to the result happens after Cancel returns.
func (w *Worker) Cancel() {
	w.taskMu.Lock()
	defer w.taskMu.Unlock()

	w.stopLocked()

	w.mu.Lock()
	w.gen++
	w.state = StateAbsent
	w.set = nil
	w.videoID = ""
	w.mu.Unlock()
}

func (w *Worker) stopLocked() {
	if w.task == nil {
		return
	}
	w.task.cancel()
	<-w.task.done
	w.task = nil
}

// State returns the current lookup state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Generation identifies the latest Start or Cancel call.
func (w *Worker) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}

// VideoID returns the video the current result belongs to.
func (w *Worker) VideoID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.videoID
}

// Index returns a query view over the published segments. It is empty
// unless the state is StateReady.
func (w *Worker) Index() segments.Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateReady {
		return segments.Index{}
	}
	return segments.NewIndex(w.set)
}

type result struct {
	segments []sponsorblock.Segment
	err      error
}

func (w *Worker) run(ctx context.Context, t *task) {
	defer close(t.done)

	fetchCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	// Buffered so an abandoned fetch can still complete and exit.
	resCh := make(chan result, 1)
	go func() {
		segs, err := w.fetch(fetchCtx, t.videoID)
		resCh <- result{segments: segs, err: err}
	}()

	var res result
	select {
	case <-fetchCtx.Done():
		res.err = fetchCtx.Err()
	case res = <-resCh:
	}

	if ctx.Err() != nil {
		w.log.Debug("lookup cancelled", "video", t.videoID)
		return
	}

	var set *segments.Set
	if res.err != nil {
		w.logFailure(t.videoID, res.err)
	} else {
		set = segments.Partition(res.segments)
		if set.Empty() {
			w.log.Info("no segments found", "video", t.videoID)
			set = nil
		} else {
			w.log.Info("segments found", "video", t.videoID, "count", set.Len())
		}
	}

	if !w.publish(t.gen, set) {
		return
	}
	if w.onReady != nil {
		w.onReady(t.videoID, t.gen)
	}
}

// publish stores set if gen is still the current generation.
func (w *Worker) publish(gen uint64, set *segments.Set) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gen != gen {
		return false
	}
	if set == nil {
		w.state = StateAbsent
		w.set = nil
	} else {
		w.state = StateReady
		w.set = set
	}
	return true
}

func (w *Worker) logFailure(videoID string, err error) {
	kind, _ := sponsorblock.KindOf(err)
	switch kind {
	case sponsorblock.KindMalformed:
		w.log.Error(errmsg.Format(errmsg.OpFetchSegments, err), "video", videoID)
	case sponsorblock.KindCancelled:
		w.log.Debug("lookup abandoned", "video", videoID, "error", err)
	default:
		w.log.Warn(errmsg.Format(errmsg.OpFetchSegments, err), "video", videoID)
	}
}

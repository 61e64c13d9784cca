package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
)

type fakeWriter struct {
	mu      sync.Mutex
	gate    chan struct{}
	err     error
	batches [][]Skip
}

func (f *fakeWriter) Record(_ context.Context, skips []Skip) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]Skip(nil), skips...))
	return f.err
}

func (f *fakeWriter) videos() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, b := range f.batches {
		for _, s := range b {
			ids = append(ids, s.VideoID)
		}
	}
	return ids
}

func TestRecorder_CloseFlushesQueue(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w, 16, nil)

	for _, id := range []string{"a", "b", "c"} {
		r.RecordSkip(Skip{VideoID: id})
	}
	r.Close()

	assert.Equal(t, []string{"a", "b", "c"}, w.videos())
}

func TestRecorder_BatchesQueuedSkips(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		w := &fakeWriter{gate: make(chan struct{})}
		r := NewRecorder(w, 16, nil)

		r.RecordSkip(Skip{VideoID: "first"})
		synctest.Wait() // writer blocked on the first batch

		r.RecordSkip(Skip{VideoID: "second"})
		r.RecordSkip(Skip{VideoID: "third"})
		close(w.gate)
		r.Close()

		assert.Len(t, w.batches, 2)
		assert.Equal(t, []string{"first", "second", "third"}, w.videos())
	})
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		w := &fakeWriter{gate: make(chan struct{})}
		r := NewRecorder(w, 1, nil)

		r.RecordSkip(Skip{VideoID: "in-flight"})
		synctest.Wait()
		r.RecordSkip(Skip{VideoID: "queued"})
		r.RecordSkip(Skip{VideoID: "dropped"})

		close(w.gate)
		r.Close()

		assert.Equal(t, []string{"in-flight", "queued"}, w.videos())
	})
}

func TestRecorder_RecordAfterCloseIsIgnored(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w, 4, nil)
	r.Close()

	r.RecordSkip(Skip{VideoID: "late"})
	r.Close()

	assert.Empty(t, w.videos())
}

func TestRecorder_WriteErrorKeepsRunning(t *testing.T) {
	w := &fakeWriter{err: errors.New("disk full")}
	r := NewRecorder(w, 4, nil)

	r.RecordSkip(Skip{VideoID: "a"})
	r.Close()

	assert.Equal(t, []string{"a"}, w.videos())
}

func TestRecorder_WritesToStore(t *testing.T) {
	s := setupTestStore(t)
	r := NewRecorder(s, 4, nil)

	r.RecordSkip(Skip{VideoID: "v", SegmentUUID: "u", Category: "sponsor", Seconds: 12})
	r.Close()

	sum, err := s.Summary(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, sum.Count)
	assert.InDelta(t, 12, sum.Seconds, 1e-9)
}

package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_EmptySummary(t *testing.T) {
	s := setupTestStore(t)

	sum, err := s.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.InDelta(t, 0, sum.Seconds, 1e-9)
	assert.Empty(t, sum.Categories)
	assert.Empty(t, sum.LastVideo)
	assert.True(t, sum.LastSkip.IsZero())
}

func TestStore_RecordAndSummarize(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := s.Record(ctx, []Skip{
		{VideoID: "aaaaaaaaaaa", SegmentUUID: "1", Category: "sponsor", Seconds: 60, At: base},
		{VideoID: "aaaaaaaaaaa", SegmentUUID: "2", Category: "intro", Seconds: 10, At: base.Add(time.Minute)},
	})
	require.NoError(t, err)
	err = s.Record(ctx, []Skip{
		{VideoID: "bbbbbbbbbbb", SegmentUUID: "3", Category: "sponsor", Seconds: 30.5, At: base.Add(time.Hour)},
	})
	require.NoError(t, err)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 100.5, sum.Seconds, 1e-9)
	assert.Equal(t, "bbbbbbbbbbb", sum.LastVideo)
	assert.True(t, sum.LastSkip.Equal(base.Add(time.Hour)))
	assert.Equal(t, []CategoryTotal{
		{Category: "sponsor", Count: 2, Seconds: 90.5},
		{Category: "intro", Count: 1, Seconds: 10},
	}, sum.Categories)
}

func TestStore_RecordEmptyBatch(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Record(context.Background(), nil))

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
}

func TestStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), []Skip{
		{VideoID: "v", SegmentUUID: "1", Category: "outro", Seconds: 5, At: time.Now()},
	}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Count)
}

func TestStore_RecordCancelled(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Record(ctx, []Skip{{VideoID: "v", SegmentUUID: "1", Category: "sponsor", Seconds: 1, At: time.Now()}})

	require.Error(t, err)
	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
}

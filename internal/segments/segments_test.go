package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sb "github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"
)

func seg(uuid string, action sb.Action, start, end float64) sb.Segment {
	return sb.Segment{UUID: uuid, Category: sb.CategorySponsor, Action: action, Start: start, End: end}
}

func TestPartition_ExhaustiveAndDisjoint(t *testing.T) {
	tests := []struct {
		name  string
		input []sb.Segment
	}{
		{name: "empty"},
		{
			name: "one of each",
			input: []sb.Segment{
				seg("s", sb.ActionSkip, 1, 2),
				seg("m", sb.ActionMute, 3, 4),
				seg("p", sb.ActionPoi, 5, 5),
				seg("f", sb.ActionFull, 0, 0),
			},
		},
		{
			name: "duplicates of poi and full",
			input: []sb.Segment{
				seg("p1", sb.ActionPoi, 5, 5),
				seg("s1", sb.ActionSkip, 1, 2),
				seg("p2", sb.ActionPoi, 7, 7),
				seg("f1", sb.ActionFull, 0, 0),
				seg("f2", sb.ActionFull, 0, 0),
				seg("s2", sb.ActionSkip, 8, 9),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Partition(tt.input)

			assert.Equal(t, len(tt.input), set.Len()+set.Discarded)

			seen := map[string]int{}
			for _, s := range set.Skippable {
				assert.Equal(t, sb.ActionSkip, s.Action)
				seen[s.UUID]++
			}
			for _, s := range set.Mutable {
				assert.Equal(t, sb.ActionMute, s.Action)
				seen[s.UUID]++
			}
			if set.POI != nil {
				seen[set.POI.UUID]++
			}
			if set.Full != nil {
				seen[set.Full.UUID]++
			}
			for uuid, n := range seen {
				assert.Equal(t, 1, n, "segment %s appears in %d partitions", uuid, n)
			}
		})
	}
}

func TestPartition_KeepsFirstPOIAndFullAndOrder(t *testing.T) {
	set := Partition([]sb.Segment{
		seg("s2", sb.ActionSkip, 50, 60),
		seg("p1", sb.ActionPoi, 5, 5),
		seg("s1", sb.ActionSkip, 10, 20),
		seg("p2", sb.ActionPoi, 7, 7),
		seg("f1", sb.ActionFull, 0, 0),
		seg("f2", sb.ActionFull, 0, 0),
	})

	require.NotNil(t, set.POI)
	require.NotNil(t, set.Full)
	assert.Equal(t, "p1", set.POI.UUID)
	assert.Equal(t, "f1", set.Full.UUID)
	assert.Equal(t, 2, set.Discarded)
	require.Len(t, set.Skippable, 2)
	assert.Equal(t, "s2", set.Skippable[0].UUID)
	assert.Equal(t, "s1", set.Skippable[1].UUID)
}

func TestIndex_SkipAtUsesEpsilon(t *testing.T) {
	ix := NewIndex(Partition([]sb.Segment{seg("s", sb.ActionSkip, 10, 20)}))

	tests := []struct {
		t    float64
		want bool
	}{
		{9.99, false},
		{10, true},
		{15, true},
		{19.85, true},
		{19.95, false},
		{20, false},
	}
	for _, tt := range tests {
		_, got := ix.SkipAt(tt.t)
		assert.Equal(t, tt.want, got, "SkipAt(%v)", tt.t)
	}
}

func TestIndex_MuteAtHasNoEpsilon(t *testing.T) {
	ix := NewIndex(Partition([]sb.Segment{seg("m", sb.ActionMute, 10, 20)}))

	tests := []struct {
		t    float64
		want bool
	}{
		{9.99, false},
		{10, true},
		{19.95, true},
		{19.99, true},
		{20, false},
	}
	for _, tt := range tests {
		_, got := ix.MuteAt(tt.t)
		assert.Equal(t, tt.want, got, "MuteAt(%v)", tt.t)
	}
}

func TestIndex_ReturnsFirstMatch(t *testing.T) {
	ix := NewIndex(Partition([]sb.Segment{
		seg("outer", sb.ActionSkip, 0, 100),
		seg("inner", sb.ActionSkip, 10, 20),
	}))

	s, ok := ix.SkipAt(15)
	require.True(t, ok)
	assert.Equal(t, "outer", s.UUID)
}

func TestIndex_POIAndExcludedCategory(t *testing.T) {
	full := seg("f", sb.ActionFull, 0, 0)
	full.Category = sb.CategoryExclusiveAccess
	ix := NewIndex(Partition([]sb.Segment{
		seg("p", sb.ActionPoi, 42.5, 42.5),
		full,
	}))

	poi, ok := ix.PointOfInterest()
	require.True(t, ok)
	assert.InDelta(t, 42.5, poi, 1e-9)

	cat, ok := ix.ExcludedCategory()
	require.True(t, ok)
	assert.Equal(t, sb.CategoryExclusiveAccess, cat)
}

func TestIndex_EmptyReportsNothing(t *testing.T) {
	var ix Index

	assert.False(t, ix.Ready())
	assert.Equal(t, 0, ix.Len())
	_, ok := ix.SkipAt(10)
	assert.False(t, ok)
	_, ok = ix.MuteAt(10)
	assert.False(t, ok)
	_, ok = ix.PointOfInterest()
	assert.False(t, ok)
	_, ok = ix.ExcludedCategory()
	assert.False(t, ok)
}

package segments

import "github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"

// skipEpsilon trims the end of skip segments so that a position reported a
// hair before the end does not trigger a second seek to the same place.
const skipEpsilon = 0.1

// Index answers position queries over a Set. The zero Index is empty and
// every query on it reports nothing.
type Index struct {
	set *Set
}

// NewIndex wraps s. A nil s yields an empty index.
func NewIndex(s *Set) Index {
	return Index{set: s}
}

// Ready reports whether the index is backed by fetched segments.
func (ix Index) Ready() bool {
	return ix.set != nil
}

// Len returns the number of segments behind the index.
func (ix Index) Len() int {
	return ix.set.Len()
}

// SkipAt returns the first skippable segment containing t.
func (ix Index) SkipAt(t float64) (sponsorblock.Segment, bool) {
	if ix.set == nil {
		return sponsorblock.Segment{}, false
	}
	for _, s := range ix.set.Skippable {
		if t >= s.Start && t < s.End-skipEpsilon {
			return s, true
		}
	}
	return sponsorblock.Segment{}, false
}

// MuteAt returns the first mutable segment containing t.
func (ix Index) MuteAt(t float64) (sponsorblock.Segment, bool) {
	if ix.set == nil {
		return sponsorblock.Segment{}, false
	}
	for _, s := range ix.set.Mutable {
		if s.Contains(t) {
			return s, true
		}
	}
	return sponsorblock.Segment{}, false
}

// PointOfInterest returns the highlight timestamp, if any.
func (ix Index) PointOfInterest() (float64, bool) {
	if ix.set == nil || ix.set.POI == nil {
		return 0, false
	}
	return ix.set.POI.Start, true
}

// ExcludedCategory returns the label covering the whole video, if any.
func (ix Index) ExcludedCategory() (sponsorblock.Category, bool) {
	if ix.set == nil || ix.set.Full == nil {
		return 0, false
	}
	return ix.set.Full.Category, true
}

// Package segments partitions fetched segments by action and answers
// position queries against them.
package segments

import "github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"

// Set is the partitioned, immutable view of a video's segments.
type Set struct {
	Skippable []sponsorblock.Segment
	Mutable   []sponsorblock.Segment
	POI       *sponsorblock.Segment
	Full      *sponsorblock.Segment

	// Discarded counts POI and Full records beyond the first of each.
	Discarded int
}

// Partition splits segments by action in a single pass, keeping their order.
// Only the first POI and the first Full segment are retained.
func Partition(segments []sponsorblock.Segment) *Set {
	s := &Set{}
	for i := range segments {
		seg := segments[i]
		switch seg.Action {
		case sponsorblock.ActionSkip:
			s.Skippable = append(s.Skippable, seg)
		case sponsorblock.ActionMute:
			s.Mutable = append(s.Mutable, seg)
		case sponsorblock.ActionPoi:
			if s.POI == nil {
				s.POI = &seg
			} else {
				s.Discarded++
			}
		case sponsorblock.ActionFull:
			if s.Full == nil {
				s.Full = &seg
			} else {
				s.Discarded++
			}
		default:
			s.Discarded++
		}
	}
	return s
}

// Len returns the number of retained segments.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	n := len(s.Skippable) + len(s.Mutable)
	if s.POI != nil {
		n++
	}
	if s.Full != nil {
		n++
	}
	return n
}

// Empty reports whether nothing was retained.
func (s *Set) Empty() bool {
	return s.Len() == 0
}

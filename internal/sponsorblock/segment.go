// Package sponsorblock provides a client for the SponsorBlock segment API
// and the types describing crowd-sourced video segments.
package sponsorblock

import (
	"fmt"
	"strings"
)

// Category is the kind of content a segment covers.
type Category int

const (
	CategorySponsor Category = iota
	CategorySelfPromo
	CategoryInteraction
	CategoryIntro
	CategoryOutro
	CategoryPreview
	CategoryMusicOfftopic
	CategoryFiller
	CategoryExclusiveAccess
	CategoryHighlightPoint
)

var categoryNames = [...]string{
	CategorySponsor:         "sponsor",
	CategorySelfPromo:       "selfpromo",
	CategoryInteraction:     "interaction",
	CategoryIntro:           "intro",
	CategoryOutro:           "outro",
	CategoryPreview:         "preview",
	CategoryMusicOfftopic:   "music_offtopic",
	CategoryFiller:          "filler",
	CategoryExclusiveAccess: "exclusive_access",
	CategoryHighlightPoint:  "poi_highlight",
}

// String returns the API name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory converts an API name into a Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Action is what a player is expected to do with a segment.
type Action int

const (
	ActionSkip Action = iota
	ActionMute
	ActionFull
	ActionPoi
)

var actionNames = [...]string{
	ActionSkip: "skip",
	ActionMute: "mute",
	ActionFull: "full",
	ActionPoi:  "poi",
}

// String returns the API name of the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction converts an API name into an Action.
func ParseAction(s string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action type %q", s)
}

// Segment is a single time range of a video.
// Two segments are the same segment when their UUIDs match.
type Segment struct {
	Category Category
	Action   Action
	Start    float64 // seconds
	End      float64 // seconds
	UUID     string
}

// Equal reports whether both segments share the same identity.
func (s Segment) Equal(other Segment) bool {
	return s.UUID == other.UUID
}

// Contains reports whether t lies in [Start, End).
func (s Segment) Contains(t float64) bool {
	return t >= s.Start && t < s.End
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s] %.2f - %.2f", s.Category, s.Start, s.End)
}

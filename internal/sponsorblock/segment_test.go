package sponsorblock

import "testing"

func TestParseCategory_RoundTrip(t *testing.T) {
	for c := CategorySponsor; c <= CategoryHighlightPoint; c++ {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q) error: %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}
}

func TestParseCategory_Names(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"sponsor", CategorySponsor},
		{"SelfPromo", CategorySelfPromo},
		{" music_offtopic ", CategoryMusicOfftopic},
		{"exclusive_access", CategoryExclusiveAccess},
		{"poi_highlight", CategoryHighlightPoint},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if err != nil {
			t.Errorf("ParseCategory(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseCategory("chapter"); err == nil {
		t.Error("ParseCategory(chapter) should fail")
	}
}

func TestParseAction(t *testing.T) {
	for a := ActionSkip; a <= ActionPoi; a++ {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v; want %v", a.String(), got, err, a)
		}
	}
	if _, err := ParseAction("chapter"); err == nil {
		t.Error("ParseAction(chapter) should fail")
	}
	if Action(42).String() != "unknown" {
		t.Errorf("Action(42).String() = %q, want unknown", Action(42).String())
	}
}

func TestSegment_EqualUsesUUIDOnly(t *testing.T) {
	a := Segment{UUID: "x", Start: 1, End: 2}
	b := Segment{UUID: "x", Start: 5, End: 9, Category: CategoryOutro}
	c := Segment{UUID: "y", Start: 1, End: 2}

	if !a.Equal(b) {
		t.Error("segments with the same UUID should be equal")
	}
	if a.Equal(c) {
		t.Error("segments with different UUIDs should differ")
	}
}

func TestSegment_Contains(t *testing.T) {
	s := Segment{Start: 10, End: 20}
	tests := []struct {
		t    float64
		want bool
	}{
		{9.99, false},
		{10, true},
		{19.99, true},
		{20, false},
	}
	for _, tt := range tests {
		if got := s.Contains(tt.t); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
	if s.Duration() != 10 {
		t.Errorf("Duration() = %v, want 10", s.Duration())
	}
}

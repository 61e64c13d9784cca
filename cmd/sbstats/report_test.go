package main

import (
	"strings"
	"testing"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

func TestRender_Empty(t *testing.T) {
	out := render(stats.Summary{}, time.Now())

	if !strings.Contains(out, "No segments skipped yet") {
		t.Errorf("render() = %q, want empty-state message", out)
	}
}

func TestRender_Summary(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sum := stats.Summary{
		Count:   1234,
		Seconds: 3725,
		Categories: []stats.CategoryTotal{
			{Category: "sponsor", Count: 1200, Seconds: 3600},
			{Category: "intro", Count: 34, Seconds: 125},
		},
		LastVideo: "dQw4w9WgXcQ",
		LastSkip:  now.Add(-3 * time.Hour),
	}

	out := render(sum, now)

	for _, want := range []string{
		"1,234 segments",
		"1h2m5s",
		"3 hours ago",
		"dQw4w9WgXcQ",
		"sponsor",
		"1,200",
		"2m5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0s"},
		{59.6, "1m0s"},
		{3725, "1h2m5s"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

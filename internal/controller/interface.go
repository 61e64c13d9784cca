// internal/controller/interface.go
package controller

import (
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/segments"
	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

// Host is the player side of the controller: the properties it reads and
// the commands it issues.
type Host interface {
	Mute() (bool, error)
	SetMute(muted bool) error
	SetPosition(seconds float64) error
	JumpTo(seconds float64) error
}

// Source provides the segments of the current video.
type Source interface {
	Start(videoID string)
	Cancel()
	Index() segments.Index
}

// Notifier displays short user-visible messages. Failures are ignored.
type Notifier interface {
	Notice(message string, d time.Duration)
}

// Recorder receives completed skips for statistics. It must not block.
type Recorder interface {
	RecordSkip(s stats.Skip)
}

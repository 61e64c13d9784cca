// Package controller turns playback position and mute changes into skip,
// mute and unmute actions using the segments of the current video.
package controller

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
	"github.com/llehouerou/mpv-sponsorblock/internal/metrics"
	"github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"
	"github.com/llehouerou/mpv-sponsorblock/internal/stats"
)

const (
	// minActionPosition: seeking this early in a stream is unreliable, so
	// positions below it are ignored.
	minActionPosition = 0.5

	noticeDuration     = 8 * time.Second
	fullNoticeDuration = 10 * time.Second
)

// Phase is the controller lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseActive
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLoading:
		return "Loading"
	case PhaseActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// Options configures a Controller.
type Options struct {
	// SkipNotice shows a notice for every skip, mute and highlight jump.
	SkipNotice bool
	Logger     *slog.Logger
	Notifier   Notifier
	Recorder   Recorder
	// Now is used to timestamp recorded skips. Defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Phase       Phase
	VideoID     string
	ActiveMute  string // UUID of the mute segment being played, "" if none
	MuteByOwner bool   // true when the current mute was set by the controller
}

// Controller is driven by the player event loop.
type Controller struct {
	host     Host
	source   Source
	notifier Notifier
	recorder Recorder
	notice   bool
	now      func() time.Time
	log      *slog.Logger

	mu         sync.Mutex
	phase      Phase
	videoID    string
	activeMute string
	muteOwned  bool
}

// New creates a controller issuing commands to host for the segments
// provided by source.
func New(host Host, source Source, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		host:     host,
		source:   source,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		notice:   opts.SkipNotice,
		now:      now,
		log:      log,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Phase:       c.phase,
		VideoID:     c.videoID,
		ActiveMute:  c.activeMute,
		MuteByOwner: c.muteOwned,
	}
}

// Load starts segment lookup for a newly loaded video.
func (c *Controller) Load(videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Cancel()
	c.releaseMuteLocked()

	c.videoID = videoID
	c.phase = PhaseLoading
	c.log.Debug("video loaded", "video", videoID)
	c.source.Start(videoID)
}

// Unload stops the lookup and restores audio if the controller muted it.
func (c *Controller) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.source.Cancel()
	c.releaseMuteLocked()

	if c.phase != PhaseIdle {
		c.log.Debug("video unloaded", "video", c.videoID)
	}
	c.videoID = ""
	c.phase = PhaseIdle
}

// SegmentsReady is called once the lookup for videoID has completed.
func (c *Controller) SegmentsReady(videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || videoID != c.videoID {
		c.log.Debug("ignoring stale lookup result", "video", videoID, "current", c.videoID)
		return
	}
	c.phase = PhaseActive

	ix := c.source.Index()
	if category, ok := ix.ExcludedCategory(); ok {
		msg := fmt.Sprintf("This entire video is labeled as '%s' and is too tightly integrated to be able to separate", category)
		c.log.Info(msg, "video", videoID)
		if c.notifier != nil {
			c.notifier.Notice(msg, fullNoticeDuration)
		}
	}
	if poi, ok := ix.PointOfInterest(); ok {
		c.log.Info("video highlight available", "video", videoID, "position", poi)
	}
}

// OnPosition reacts to a new playback position, in seconds.
func (c *Controller) OnPosition(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || t < minActionPosition {
		return
	}

	ix := c.source.Index()
	if s, ok := ix.SkipAt(t); ok {
		c.skipLocked(s, t)
		return
	}
	if s, ok := ix.MuteAt(t); ok {
		c.enterMuteLocked(s)
		return
	}
	c.exitMuteLocked()
}

// OnMuteChanged reacts to the player's mute property changing.
func (c *Controller) OnMuteChanged(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.muteOwned && !muted {
		c.log.Info("mute released by user", "segment", c.activeMute)
		c.muteOwned = false
	}
}

// RequestPointOfInterest jumps to the video highlight, if it has one.
func (c *Controller) RequestPointOfInterest() {
	c.mu.Lock()
	defer c.mu.Unlock()

	poi, ok := c.source.Index().PointOfInterest()
	if !ok {
		c.log.Debug("no highlight for current video", "video", c.videoID)
		return
	}
	if err := c.host.JumpTo(poi); err != nil {
		c.log.Warn(errmsg.Format(errmsg.OpJump, err), "position", poi)
		return
	}
	metrics.Action(metrics.ActionJump)
	c.noticeLocked(fmt.Sprintf("Jumping to highlight at %s", formatPosition(poi)))
}

func (c *Controller) skipLocked(s sponsorblock.Segment, t float64) {
	if err := c.host.SetPosition(s.End); err != nil {
		c.log.Warn(errmsg.Format(errmsg.OpSkip, err), "segment", s.UUID)
		return
	}
	metrics.Action(metrics.ActionSkip)
	c.log.Info("skipped segment", "category", s.Category.String(), "to", s.End)
	c.noticeLocked(fmt.Sprintf("Skipped segment %s", s))

	if c.recorder != nil {
		c.recorder.RecordSkip(stats.Skip{
			VideoID:     c.videoID,
			SegmentUUID: s.UUID,
			Category:    s.Category.String(),
			Seconds:     s.End - t,
			At:          c.now(),
		})
	}
}

func (c *Controller) enterMuteLocked(s sponsorblock.Segment) {
	if c.activeMute == s.UUID {
		return
	}

	muted, err := c.host.Mute()
	if err != nil {
		c.log.Warn(errmsg.Format(errmsg.OpReadMute, err), "segment", s.UUID)
		return
	}

	if c.muteOwned || !muted {
		if err := c.host.SetMute(true); err != nil {
			c.log.Warn(errmsg.Format(errmsg.OpMute, err), "segment", s.UUID)
			return
		}
		c.muteOwned = true
		metrics.Action(metrics.ActionMute)
		c.log.Info("muting segment", "category", s.Category.String(), "until", s.End)
		c.noticeLocked(fmt.Sprintf("Muting segment %s", s))
	} else {
		c.log.Info("mutable segment found but audio was already muted by the user, leaving it alone",
			"segment", s.UUID)
	}

	c.activeMute = s.UUID
}

// exitMuteLocked leaves the active mute segment. A failed unmute keeps the
// state so the next position update tries again.
func (c *Controller) exitMuteLocked() {
	if c.activeMute == "" {
		return
	}

	if c.muteOwned {
		if err := c.host.SetMute(false); err != nil {
			c.log.Warn(errmsg.Format(errmsg.OpUnmute, err), "segment", c.activeMute)
			return
		}
		metrics.Action(metrics.ActionUnmute)
		c.log.Info("unmuting")
		c.muteOwned = false
	} else {
		c.log.Info("mutable segment ended but mute was changed by the user, leaving it alone")
	}

	c.activeMute = ""
}

// releaseMuteLocked is exitMuteLocked for content boundaries: the state is
// cleared even when the unmute fails.
func (c *Controller) releaseMuteLocked() {
	if c.activeMute != "" && c.muteOwned {
		if err := c.host.SetMute(false); err != nil {
			c.log.Warn(errmsg.Format(errmsg.OpUnmute, err), "segment", c.activeMute)
		} else {
			metrics.Action(metrics.ActionUnmute)
			c.log.Info("unmuting")
		}
	}
	c.activeMute = ""
	c.muteOwned = false
}

func (c *Controller) noticeLocked(msg string) {
	if c.notice && c.notifier != nil {
		c.notifier.Notice(msg, noticeDuration)
	}
}

func formatPosition(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}

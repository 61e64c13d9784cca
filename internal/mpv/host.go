package mpv

import (
	"context"
	"log/slog"
	"time"

	"github.com/llehouerou/mpv-sponsorblock/internal/errmsg"
)

// DefaultCommandTimeout bounds each command issued through a Host.
const DefaultCommandTimeout = 2 * time.Second

// Host adapts a Client to the synchronous calls made by the playback
// controller. Each call gets its own timeout.
type Host struct {
	c       *Client
	timeout time.Duration
	log     *slog.Logger
}

// NewHost wraps c. A non-positive timeout uses DefaultCommandTimeout.
func NewHost(c *Client, timeout time.Duration, logger *slog.Logger) *Host {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Host{c: c, timeout: timeout, log: logger}
}

func (h *Host) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

// Mute reads the mute property.
func (h *Host) Mute() (bool, error) {
	ctx, cancel := h.ctx()
	defer cancel()
	var muted bool
	err := h.c.GetProperty(ctx, "mute", &muted)
	return muted, err
}

// SetMute writes the mute property.
func (h *Host) SetMute(muted bool) error {
	ctx, cancel := h.ctx()
	defer cancel()
	return h.c.SetProperty(ctx, "mute", muted)
}

// SetPosition moves playback to seconds.
func (h *Host) SetPosition(seconds float64) error {
	ctx, cancel := h.ctx()
	defer cancel()
	return h.c.SetProperty(ctx, "time-pos", seconds)
}

// JumpTo performs an absolute seek to seconds.
func (h *Host) JumpTo(seconds float64) error {
	ctx, cancel := h.ctx()
	defer cancel()
	_, err := h.c.Command(ctx, "seek", seconds, "absolute")
	return err
}

// Notice shows message on the OSD. Failures are logged only.
func (h *Host) Notice(message string, d time.Duration) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.c.ShowText(ctx, message, d); err != nil {
		h.log.Debug(errmsg.Format(errmsg.OpNotice, err))
	}
}

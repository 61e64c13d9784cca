// Package notify shows skip notices as desktop notifications via D-Bus.
package notify

import "context"

// Urgency represents freedesktop notification priority levels.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Category is the vendor category hint attached to skip notices.
const Category = "x-mpv.sponsorblock"

// Notification is one desktop notification.
type Notification struct {
	Title      string
	Body       string
	Icon       string // icon name or file path
	Category   string // freedesktop category hint, optional
	Timeout    int32  // ms; -1 lets the server decide
	ReplacesID uint32 // id of a notification to update in place
	Urgency    Urgency
}

// Notifier talks to the desktop notification server.
type Notifier interface {
	// Notify shows n and returns the id the server assigned to it.
	// A notifier without a server returns 0 and no error.
	Notify(ctx context.Context, n Notification) (uint32, error)
	// Dismiss removes a notification that is still on screen.
	Dismiss(ctx context.Context, id uint32) error
}

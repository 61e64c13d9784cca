//go:build !linux

package notify

import "context"

// New returns a notifier that drops everything; desktop notices are only
// implemented over D-Bus.
func New() (Notifier, error) {
	return stubNotifier{}, nil
}

type stubNotifier struct{}

func (stubNotifier) Notify(context.Context, Notification) (uint32, error) { return 0, nil }
func (stubNotifier) Dismiss(context.Context, uint32) error                { return nil }

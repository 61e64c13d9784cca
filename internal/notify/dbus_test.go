//go:build linux

package notify

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNewDBusNotifier(t *testing.T) {
	// Skip if no D-Bus session (CI environment)
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	notifier, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if notifier == nil {
		t.Fatal("New() returned nil notifier")
	}
}

func TestDesktopSinkOverDBus(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	notifier, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	s := NewDesktopSink(notifier, nil)
	s.Notice("Test notice from unit test", time.Second)
	s.Notice("Replacing notice", time.Second)
	s.Close()
}

func TestStubNotifier(t *testing.T) {
	id, err := stubNotifier{}.Notify(context.Background(), Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("stub Notify() = %d, %v, want 0, nil", id, err)
	}
	if err := (stubNotifier{}).Dismiss(context.Background(), 7); err != nil {
		t.Errorf("stub Dismiss() = %v, want nil", err)
	}
}

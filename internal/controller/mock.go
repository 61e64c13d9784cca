// internal/controller/mock.go
package controller

import (
	"sync"
	"time"
)

// MockHost is a test double for Host. It behaves like a player: SetMute
// changes the value returned by Mute.
type MockHost struct {
	mu sync.Mutex

	muted      bool
	muteErr    error
	setMuteErr error
	seekErr    error

	muteCalls []bool
	seekCalls []float64
	jumpCalls []float64
}

// NewMockHost creates a mock host with audio unmuted.
func NewMockHost() *MockHost {
	return &MockHost{}
}

func (m *MockHost) Mute() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.muteErr != nil {
		return false, m.muteErr
	}
	return m.muted, nil
}

func (m *MockHost) SetMute(muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muteCalls = append(m.muteCalls, muted)
	if m.setMuteErr != nil {
		return m.setMuteErr
	}
	m.muted = muted
	return nil
}

func (m *MockHost) SetPosition(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, seconds)
	return m.seekErr
}

func (m *MockHost) JumpTo(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jumpCalls = append(m.jumpCalls, seconds)
	return m.seekErr
}

// Test helpers

// SetUserMute changes the mute flag as if the user toggled it.
func (m *MockHost) SetUserMute(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *MockHost) SetMuteReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muteErr = err
}

func (m *MockHost) SetMuteWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMuteErr = err
}

func (m *MockHost) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

func (m *MockHost) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *MockHost) MuteCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.muteCalls...)
}

func (m *MockHost) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.seekCalls...)
}

func (m *MockHost) JumpCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.jumpCalls...)
}

// MockNotifier records notices.
type MockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *MockNotifier) Notice(message string, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *MockNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// Verify mocks implement their interfaces at compile time.
var (
	_ Host     = (*MockHost)(nil)
	_ Notifier = (*MockNotifier)(nil)
)

// Package errmsg provides consistent error formatting for log and notice messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Lookup operations
	OpFetchSegments Op = "fetch segments"

	// Player commands
	OpSkip     Op = "skip segment"
	OpMute     Op = "mute segment"
	OpUnmute   Op = "unmute"
	OpReadMute Op = "read mute state"
	OpJump     Op = "jump to highlight"
	OpReadPath Op = "read file path"
	OpNotice   Op = "show notice"

	// Statistics
	OpOpenStats   Op = "open statistics database"
	OpRecordStats Op = "record skip statistics"
	OpReadStats   Op = "read skip statistics"

	// Initialization
	OpConnect     Op = "connect to mpv"
	OpLoadConfig  Op = "load configuration"
	OpServeMetric Op = "serve metrics"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

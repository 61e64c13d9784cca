package sponsorblock

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies lookup failures.
type ErrorKind int

const (
	// KindTransient covers network failures and unexpected HTTP statuses.
	KindTransient ErrorKind = iota
	// KindMalformed means the response body could not be decoded.
	KindMalformed
	// KindCancelled means the lookup was abandoned by its caller.
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LookupError is returned by the client for any failed lookup.
// A 404 from the service is not an error: it yields an empty result.
type LookupError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a lookup error, or false if err is not one.
func KindOf(err error) (ErrorKind, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}

func transient(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return &LookupError{Kind: KindCancelled, Op: op, Err: err}
	}
	return &LookupError{Kind: KindTransient, Op: op, Err: err}
}

func malformed(op string, err error) error {
	return &LookupError{Kind: KindMalformed, Op: op, Err: err}
}

// Package kerrors defines the error taxonomy every component reports
// against (§7): NetworkTransient, Cancelled, RemoteNotFound, RemoteMalformed,
// LocalIO, ConfigInvalid, Internal. It deliberately stays on stdlib errors/
// fmt wrapping rather than a third-party errors package — see DESIGN.md.
package kerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the purposes of retry and reporting
// decisions made by the retry wrapper and the pipeline layers above it.
type Kind string

const (
	NetworkTransient Kind = "network_transient"
	Cancelled        Kind = "cancelled"
	RemoteNotFound   Kind = "remote_not_found"
	RemoteMalformed  Kind = "remote_malformed"
	LocalIO          Kind = "local_io"
	ConfigInvalid    Kind = "config_invalid"
	Internal         Kind = "internal"
)

// Error is a classified, wrapped error carrying one of the Kind values.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err (which may be nil) as a classified Error for operation op.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a classified Error of the given kind.
func Is(err error, kind Kind) bool {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}

// ErrCancelled is the sentinel returned by the retry wrapper and HTTP
// layer once the cancellation flag has been observed.
var ErrCancelled = New(Cancelled, "cancelled", errors.New("operation cancelled"))

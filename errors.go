package syndesi

import (
	"fmt"
	"time"
)

// Kind identifies which branch of the error taxonomy an Error belongs to,
// mirroring the teacher's own msg+code Error struct (rolfl-modbus/errors.go)
// generalized from a single Modbus exception code to the full worker/adapter
// taxonomy described by this library's error handling design.
type Kind int

const (
	// KindOpen: the transport could not be opened.
	KindOpen Kind = iota
	// KindWrite: the transport write failed or the endpoint disappeared.
	KindWrite
	// KindRead: the transport read failed for a reason other than timeout/disconnect.
	KindRead
	// KindDisconnected: the endpoint closed (empty read or OS error).
	KindDisconnected
	// KindTimeout: the response timeout elapsed with action ERROR.
	KindTimeout
	// KindConfiguration: the caller misused the API.
	KindConfiguration
	// KindWorker: an internal worker bug, or the worker didn't answer a command in time.
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	case KindDisconnected:
		return "disconnected"
	case KindTimeout:
		return "timeout"
	case KindConfiguration:
		return "configuration"
	case KindWorker:
		return "worker"
	default:
		return "unknown"
	}
}

// Error is the typed error value returned across the worker/adapter boundary.
// Error implements Unwrap so callers can use errors.Is/errors.As against the
// wrapped cause, the same contract Daedaluz-goserial's own Error type offers.
type Error struct {
	kind    Kind
	msg     string
	cause   error
	Timeout time.Duration // set only for KindTimeout
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("syndesi: %s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("syndesi: %s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind reports which branch of the taxonomy this error belongs to.
func (e *Error) Kind() Kind { return e.kind }

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// OpenError reports that a transport failed to open.
func OpenError(cause error, format string, args ...interface{}) *Error {
	return newError(KindOpen, cause, format, args...)
}

// WriteError reports that a transport write failed.
func WriteError(cause error, format string, args ...interface{}) *Error {
	return newError(KindWrite, cause, format, args...)
}

// ReadError reports a transport read failure unrelated to timeout or disconnect.
func ReadError(cause error, format string, args ...interface{}) *Error {
	return newError(KindRead, cause, format, args...)
}

// DisconnectedError reports that the endpoint closed.
func DisconnectedError(format string, args ...interface{}) *Error {
	return newError(KindDisconnected, nil, format, args...)
}

// TimeoutError reports that the response timeout elapsed with action ERROR.
func TimeoutError(timeout time.Duration) *Error {
	e := newError(KindTimeout, nil, "response timeout after %s", timeout)
	e.Timeout = timeout
	return e
}

// ConfigurationError reports caller misuse of the API.
func ConfigurationError(format string, args ...interface{}) *Error {
	return newError(KindConfiguration, nil, format, args...)
}

// WorkerError reports an internal worker fault, or that the worker failed to
// answer a command within its guard window. Distinct from a device timeout.
func WorkerError(cause error, format string, args ...interface{}) *Error {
	return newError(KindWorker, cause, format, args...)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.kind == kind
	}
	return false
}

// as walks err's Unwrap chain looking for a *Error: a local stand-in for
// errors.As limited to that one target type, following single-error Unwrap
// methods only.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

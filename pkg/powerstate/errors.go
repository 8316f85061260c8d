package powerstate

import (
	"fmt"
)

// Kind classifies a powerstate error.
type Kind int

const (
	// KindUnsupportedPlatform means this build has no power backend.
	KindUnsupportedPlatform Kind = iota + 1
	// KindNativeQueryFailed means the OS power status call failed.
	KindNativeQueryFailed
	// KindCallbackThreadSpawnFailed means the dispatch goroutine died before creating the sink.
	KindCallbackThreadSpawnFailed
	// KindRegistrationChannelClosed means the handoff channel closed without a result.
	KindRegistrationChannelClosed
	// KindSinkCreationFailed means the native event sink could not be created or registered.
	KindSinkCreationFailed
	// KindNoRunLoopAvailable means there is no run loop to attach the sink to.
	KindNoRunLoopAvailable
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedPlatform:
		return "unsupported platform"
	case KindNativeQueryFailed:
		return "native power query failed"
	case KindCallbackThreadSpawnFailed:
		return "failed to spawn callback thread"
	case KindRegistrationChannelClosed:
		return "registration channel closed"
	case KindSinkCreationFailed:
		return "failed to create event sink"
	case KindNoRunLoopAvailable:
		return "no run loop available"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is returned by every powerstate operation.
type Error struct {
	Kind    Kind
	Details string
	Err     error
}

var (
	ErrUnsupportedPlatform       = &Error{Kind: KindUnsupportedPlatform}
	ErrNativeQueryFailed         = &Error{Kind: KindNativeQueryFailed}
	ErrCallbackThreadSpawnFailed = &Error{Kind: KindCallbackThreadSpawnFailed}
	ErrRegistrationChannelClosed = &Error{Kind: KindRegistrationChannelClosed}
	ErrSinkCreationFailed        = &Error{Kind: KindSinkCreationFailed}
	ErrNoRunLoopAvailable        = &Error{Kind: KindNoRunLoopAvailable}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so errors.Is(err, ErrNativeQueryFailed)
// holds for any native query failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, details string, cause error) *Error {
	return &Error{Kind: kind, Details: details, Err: cause}
}

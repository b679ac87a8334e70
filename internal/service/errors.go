package service

import "errors"

// Kind classifies service failures. Handlers map kinds to HTTP status codes.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindPreconditionFailed  Kind = "PRECONDITION_FAILED"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
)

// Error is a classified service error. Two Errors match under errors.Is
// when their kinds are equal.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

var (
	ErrNotFound            = newError(KindNotFound, "not found")
	ErrConflict            = newError(KindConflict, "conflict")
	ErrPreconditionFailed  = newError(KindPreconditionFailed, "precondition failed")
	ErrUpstreamUnavailable = newError(KindUpstreamUnavailable, "upstream unavailable")
)

var (
	ErrEventNotFound             = newError(KindNotFound, "event not found")
	ErrGuestNotFound             = newError(KindNotFound, "guest not found")
	ErrAlreadyInvited            = newError(KindConflict, "user is already invited to this event")
	ErrVenueUnavailable          = newError(KindConflict, "venue is not available for the requested time")
	ErrVenueDetailsMissing       = newError(KindPreconditionFailed, "venue, start and end time are required to reserve a venue")
	ErrCheckInRequiresAcceptance = newError(KindPreconditionFailed, "guest must accept the invitation before checking in")
	ErrRsvpNotTracked            = newError(KindPreconditionFailed, "rsvp is tracked by the guest service")
)

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

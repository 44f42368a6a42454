package jobs

import "errors"

// Kind is a stable machine-readable error category. The HTTP layer maps
// kinds to status codes; the engine only ever speaks in kinds.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindJobNotOpen        Kind = "job_not_open"
	KindBidNotPending     Kind = "bid_not_pending"
	KindDuplicateBid      Kind = "duplicate_bid"
	KindConflict          Kind = "conflict"
)

// Error is a business-rule failure with a stable kind and a
// human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func ValidationError(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func Unauthorized(msg string) *Error      { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) *Error          { return &Error{Kind: KindNotFound, Message: msg} }
func InvalidTransition(msg string) *Error { return &Error{Kind: KindInvalidTransition, Message: msg} }
func JobNotOpen(msg string) *Error        { return &Error{Kind: KindJobNotOpen, Message: msg} }
func BidNotPending(msg string) *Error     { return &Error{Kind: KindBidNotPending, Message: msg} }
func DuplicateBid(msg string) *Error      { return &Error{Kind: KindDuplicateBid, Message: msg} }
func Conflict(msg string) *Error          { return &Error{Kind: KindConflict, Message: msg} }

// KindOf extracts the kind from an error, or "" if the error did not
// come out of the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

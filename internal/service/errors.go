package service

import "errors"

// Failure kinds. Handlers map each one to a single HTTP status.
var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrForbidden         = errors.New("forbidden")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Error carries a message that is safe to show the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Caller-facing failures, each unwrapping to one of the kinds above.
var (
	ErrEmailRequired = &Error{Kind: ErrInvalidArgument, Message: "Email required"}
	ErrInvalidID     = &Error{Kind: ErrInvalidArgument, Message: "Invalid ID"}
	ErrInvalidBody   = &Error{Kind: ErrInvalidArgument, Message: "Invalid request body"}
	ErrNotOwner      = &Error{Kind: ErrForbidden, Message: "Forbidden"}
)

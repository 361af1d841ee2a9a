package errors

import "net/http"

// Kind classifies an error for callers that need to branch on cause
// without parsing messages. The wire format only ever carries Message.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindDuplicateEmail    Kind = "duplicate_email"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotApproved       Kind = "not_approved"
	KindUnauthorized      Kind = "unauthorized"
	KindConflict          Kind = "conflict"
	KindUnavailable       Kind = "unavailable"
)

// Error is the one error type that crosses layer boundaries.
// Anything else reaching the handler edge becomes a plain 500.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, StatusCode: http.StatusBadRequest}
}

func DuplicateEmail(msg string) *Error {
	return &Error{Kind: KindDuplicateEmail, Message: msg, StatusCode: http.StatusConflict}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, StatusCode: http.StatusNotFound}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg, StatusCode: http.StatusForbidden}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, StatusCode: http.StatusConflict}
}

func InvalidTransition(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg, StatusCode: http.StatusConflict}
}

// NotApproved deliberately carries the same message as a bad-password
// failure so registration status can't be enumerated over the wire.
func NotApproved() *Error {
	return &Error{Kind: KindNotApproved, Message: InvalidCredentialsMessage, StatusCode: http.StatusUnauthorized}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, StatusCode: http.StatusUnauthorized}
}

// InvalidCredentialsMessage is shared by every login failure path.
const InvalidCredentialsMessage = "Invalid credentials or account not yet approved"

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// StatusCode returns the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	if e, ok := err.(*Error); ok {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

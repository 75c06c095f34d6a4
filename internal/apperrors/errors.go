package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories the service may return.
// Every error that crosses the handler boundary carries exactly one of these.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindUnprocessableEntity
	KindServiceUnavailable
	KindNotImplemented
	KindInternal
)

// Error is a taxonomy error: a kind, a human readable message and optional
// structured details. Lower layer causes may be attached with Wrap but are
// never rendered to the caller.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind and message, so wrapped or detailed
// copies still compare equal to their sentinel with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithDetails returns a copy carrying structured details
func (e *Error) WithDetails(details map[string]any) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, cause: e.cause}
}

// Wrap returns a copy with the lower layer cause attached
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: e.Details, cause: cause}
}

// HTTPStatus maps a kind to its response status code
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindNotImplemented:
		return http.StatusNotImplemented
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// FromError extracts the taxonomy error or rewrites the cause into an opaque
// Unknown error. Raw driver or crypto errors never reach the caller verbatim.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.Wrap(err)
}

var (
	ErrUnknown = New(KindUnknown, "Unknown")

	ErrUserAlreadyExists = New(KindConflict, "User already exists")
	ErrLoginAlreadyTaken = New(KindConflict, "Login already exists")
	ErrUserNotFound      = New(KindNotFound, "User not found")
	ErrInvalidPassword   = New(KindBadRequest, "Invalid password")
	ErrPasswordMismatch  = New(KindBadRequest, "Password mismatch")
	ErrRoleChangeDenied  = New(KindForbidden, "Only admin may change role")

	ErrTokenNotProvided = New(KindUnauthorized, "Token is not provided")
	ErrInvalidToken     = New(KindUnauthorized, "Invalid token provided")
	ErrUnauthorized     = New(KindUnauthorized, "Unauthorized")
)

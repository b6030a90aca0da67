package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest indicates the request conflicts with a business rule or is malformed.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized indicates the caller is unauthenticated or may not touch the resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks the role required by a route.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)

// Error pairs a client facing message with the sentinel that classifies it.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf reports a missing target resource.
func NotFoundf(format string, args ...any) error {
	return NewError(ErrNotFound, format, args...)
}

// BadRequestf reports a request rejected by a business rule.
func BadRequestf(format string, args ...any) error {
	return NewError(ErrBadRequest, format, args...)
}

// UserSafeMessage returns the message of a classified error, or a generic
// text for anything that was not produced by NewError.
func UserSafeMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return "Internal server error"
}

package models

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, client-facing classification of a failure.
type ErrorKind string

const (
	KindValidation               ErrorKind = "VALIDATION_ERROR"
	KindDuplicateUsername        ErrorKind = "DUPLICATE_USERNAME"
	KindAuthenticationFailed     ErrorKind = "AUTHENTICATION_FAILED"
	KindMissingToken             ErrorKind = "MISSING_TOKEN"
	KindInvalidToken             ErrorKind = "INVALID_TOKEN"
	KindExpiredToken             ErrorKind = "EXPIRED_TOKEN"
	KindNotFound                 ErrorKind = "NOT_FOUND"
	KindSelfInteractionForbidden ErrorKind = "SELF_INTERACTION_FORBIDDEN"
	KindPostExpired              ErrorKind = "POST_EXPIRED"
	KindNotPostOwner             ErrorKind = "NOT_POST_OWNER"
	KindInternal                 ErrorKind = "INTERNAL"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrValidation               = NewError(KindValidation, "validation failed")
	ErrDuplicateUsername        = NewError(KindDuplicateUsername, "username already taken")
	ErrAuthenticationFailed     = NewError(KindAuthenticationFailed, "authentication failed")
	ErrMissingToken             = NewError(KindMissingToken, "access token required")
	ErrInvalidToken             = NewError(KindInvalidToken, "invalid token")
	ErrExpiredToken             = NewError(KindExpiredToken, "token expired")
	ErrNotFound                 = NewError(KindNotFound, "not found")
	ErrSelfInteractionForbidden = NewError(KindSelfInteractionForbidden, "you cannot like your own post")
	ErrPostExpired              = NewError(KindPostExpired, "cannot dislike an expired post")
	ErrNotPostOwner             = NewError(KindNotPostOwner, "only the post owner can do this")
)

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NotFoundf(format string, args ...any) *Error {
	return NewError(KindNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) *Error {
	return NewError(KindValidation, fmt.Sprintf(format, args...))
}

package services

import (
	"fmt"
	"net/http"
)

const GenericFailureMessage = "Something went wrong. Please try again."

type AuthErrorKind int

const (
	AuthUnclassified AuthErrorKind = iota
	AuthNotFound
	AuthMismatch
)

// AuthError is a failed authentication request. Code is the HTTP status the
// endpoint answered with, or 0 if no response was received.
type AuthError struct {
	Kind AuthErrorKind
	Code int
	Err  error
}

var (
	ErrUserNotFound     = &AuthError{Kind: AuthNotFound, Code: http.StatusNotFound}
	ErrPasswordMismatch = &AuthError{Kind: AuthMismatch, Code: http.StatusUnauthorized}
)

func unclassified(code int, err error) *AuthError {
	return &AuthError{Kind: AuthUnclassified, Code: code, Err: err}
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case AuthNotFound:
		return "auth: user not found"
	case AuthMismatch:
		return "auth: password does not match"
	}
	if e.Code != 0 {
		return fmt.Sprintf("auth: unexpected status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("auth: request failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches on kind so that errors.Is(err, ErrUserNotFound) holds for any 404.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind && t.Kind != AuthUnclassified
}

func (e *AuthError) StatusCode() int { return e.Code }

func (e *AuthError) UserMessage() string {
	switch e.Kind {
	case AuthNotFound:
		return "User not found."
	case AuthMismatch:
		return "Password does not match."
	default:
		return GenericFailureMessage
	}
}

func (e *AuthError) outcome() string {
	switch e.Kind {
	case AuthNotFound:
		return "not_found"
	case AuthMismatch:
		return "mismatch"
	default:
		return "failed"
	}
}

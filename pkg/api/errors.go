package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the server rejects the bearer token.
// Callers other than the session probe must treat it as cause to drop all
// cached state and defer to re-login; the console never retries it.
var ErrUnauthorized = errors.New("unauthorized")

// ErrValidation marks errors raised locally before any network call.
// No cached state is touched when a request fails validation.
var ErrValidation = errors.New("validation failed")

// Error is a server-side rejection of a request. Detail carries the
// server-supplied message when the response body included one.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server rejected the request (status %d)", e.StatusCode)
}

// IsValidation reports whether err originated from local validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated means no valid access token could be produced for the session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionGone is the ErrNotAuthenticated case that cannot recover: the
	// session is unknown, has no account, or has nothing left to refresh with.
	ErrSessionGone      = fmt.Errorf("%w: session ended", ErrNotAuthenticated)
	ErrActionNotAllowed = errors.New("action not allowed for campaign status")
	ErrInvalidAction    = errors.New("unknown campaign action")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

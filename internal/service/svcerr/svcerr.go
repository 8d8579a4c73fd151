// Package svcerr carries user-facing failure text alongside the underlying error.
package svcerr

import (
	"errors"

	"github.com/groow/smoke/pkg/clients/marketplace"
)

// Error pairs a message meant for an operator or end user with its cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil when err is nil.
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// Message renders err for display. API rejections contribute their own user text.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *marketplace.APIError
	hasAPI := errors.As(err, &apiErr)

	var svcErr *Error
	if errors.As(err, &svcErr) {
		if hasAPI {
			return svcErr.Message + ". " + apiErr.UserMessage()
		}
		return svcErr.Message
	}
	if hasAPI {
		return apiErr.UserMessage()
	}
	return "An error occurred"
}

package services

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for both unknown-user and
// wrong-password login failures so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrForbidden is returned when a user acts on another user's resource.
var ErrForbidden = errors.New("forbidden")

// ValidationError marks a client-fixable input problem.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

func invalidf(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

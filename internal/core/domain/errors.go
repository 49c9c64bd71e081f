package domain

import "errors"

var (
	// ErrEmailTaken signals a uniqueness conflict on the email address.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized covers a missing, malformed, or expired session.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrTaskNotFound is returned when a task does not exist or belongs
	// to another user; the two cases are deliberately indistinguishable.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound signals a lookup miss on the users collection.
	ErrUserNotFound = errors.New("user not found")
	// ErrRevisionMismatch signals a conditional update that lost the race.
	ErrRevisionMismatch = errors.New("task was modified concurrently")
	// ErrTooManyLoginAttempts signals the login throttle tripped.
	ErrTooManyLoginAttempts = errors.New("too many login attempts, try again later")
)

// ValidationError reports malformed input, caught before any storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a *ValidationError with the given reason.
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package mqerr

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidInputType = errors.New("invalid input type")
	ErrInvalidUsername  = errors.New("invalid username")

	// Primitive errors
	ErrPrimitiveUnavailable = errors.New("hashing primitive unavailable")

	// Digest errors
	ErrInvalidFormat        = errors.New("invalid format")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

func NewInvalidInputError(action Action, details string) error {
	return fmt.Errorf("%w: cannot %s: %s", ErrInvalidInput, action, details)
}

func NewInvalidInputTypeError(action Action, typeName string) error {
	return fmt.Errorf("%w: %s expects text, got %s", ErrInvalidInputType, action, typeName)
}

func NewPrimitiveError(action Action, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPrimitiveUnavailable, action, err)
}

func NewInvalidFormatError(action Action, details string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidFormat, action, details)
}

func NewUnsupportedAlgorithmError(tag string) error {
	return fmt.Errorf("%w: '%s'", ErrUnsupportedAlgorithm, tag)
}

func NewInvalidUsernameError(username string, details string) error {
	return fmt.Errorf("%w: '%s' %s", ErrInvalidUsername, username, details)
}

// ErrUserNotFound is returned when a password file has no entry for a username.
var ErrUserNotFound = errors.New("user not found")

func NewUserNotFoundError(username string) error {
	return fmt.Errorf("%w: '%s'", ErrUserNotFound, username)
}

package mqpasswd

import (
	"errors"

	"github.com/hengadev/mqpasswd/internal/mqerr"
)

var (
	// Input errors
	ErrInvalidInput     = mqerr.ErrInvalidInput
	ErrInvalidInputType = mqerr.ErrInvalidInputType
	ErrInvalidUsername  = mqerr.ErrInvalidUsername

	// Primitive errors
	ErrPrimitiveUnavailable = mqerr.ErrPrimitiveUnavailable

	// Digest errors
	ErrInvalidFormat        = mqerr.ErrInvalidFormat
	ErrUnsupportedAlgorithm = mqerr.ErrUnsupportedAlgorithm

	// Password file errors
	ErrUserNotFound = mqerr.ErrUserNotFound

	// High-level service errors
	ErrInvalidConfiguration     = errors.New("invalid configuration")
	ErrAuthenticationFailed     = errors.New("authentication failed")
	ErrSecretStorageUnavailable = errors.New("secret storage unavailable")
	ErrSecretNotFound           = errors.New("secret not found")
	ErrPublishFailed            = errors.New("publish failed")
)

// IsInputError returns true if the error was caused by the password or username supplied by the caller.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidInputType) ||
		errors.Is(err, ErrInvalidUsername)
}

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrAuthenticationFailed)
}

// IsRetryableError returns true if the error represents a transient failure that might succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrSecretStorageUnavailable) ||
		errors.Is(err, ErrPublishFailed)
}

// IsDigestError returns true if a stored digest could not be understood.
func IsDigestError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedAlgorithm)
}

package mqpasswd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hengadev/mqpasswd/internal/security"
)

// Option configures an Encoder.
type Option func(e *Encoder) error

// WithParams sets the PBKDF2 parameters. Zero fields take their default.
func WithParams(params Params) Option {
	return func(e *Encoder) error {
		params = params.withDefaults()
		if err := params.Validate(); err != nil {
			return fmt.Errorf("validate Params: %w", err)
		}
		e.params = params
		return nil
	}
}

// WithRandom replaces crypto/rand as the salt source. Reads are serialized.
func WithRandom(r io.Reader) Option {
	return func(e *Encoder) error {
		if r == nil {
			return fmt.Errorf("random source cannot be nil")
		}
		e.random = security.NewSecureRandomGeneratorFrom(r)
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

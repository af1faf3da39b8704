package mqpasswd

import (
	"fmt"

	"github.com/hengadev/errsx"
)

// Params defines the PBKDF2 parameters written into new digests.
type Params struct {
	Iterations int `yaml:"iterations"`
	SaltLength int `yaml:"salt_length"`
}

// DefaultParams returns the parameters Mosquitto's own tooling expects from this encoder:
// 101 rounds and a 12-byte salt.
func DefaultParams() Params {
	return Params{
		Iterations: DefaultIterations,
		SaltLength: DefaultSaltLength,
	}
}

// Validate reports every out-of-range field. The returned error is an errsx.Map keyed by field name.
func (p Params) Validate() error {
	var errs errsx.Map
	if p.Iterations < MinIterations || p.Iterations > MaxIterations {
		errs.Set("iterations", fmt.Sprintf("must be between %d and %d, got %d", MinIterations, MaxIterations, p.Iterations))
	}
	if p.SaltLength < MinSaltLength || p.SaltLength > MaxSaltLength {
		errs.Set("salt_length", fmt.Sprintf("must be between %d and %d bytes, got %d", MinSaltLength, MaxSaltLength, p.SaltLength))
	} else if p.SaltLength%3 != 0 {
		errs.Set("salt_length", fmt.Sprintf("must be a multiple of 3, got %d", p.SaltLength))
	}
	return errs.AsError()
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Iterations == 0 {
		p.Iterations = d.Iterations
	}
	if p.SaltLength == 0 {
		p.SaltLength = d.SaltLength
	}
	return p
}

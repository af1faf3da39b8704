package mqpasswd

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hengadev/mqpasswd/internal/crypto"
	"github.com/hengadev/mqpasswd/internal/monitoring"
	"github.com/hengadev/mqpasswd/internal/mqerr"
	"github.com/hengadev/mqpasswd/internal/radix64"
	"github.com/hengadev/mqpasswd/internal/security"
)

// Encoder turns plaintext passwords into Mosquitto "$7$" digests.
//
// An Encoder is immutable once built and safe for concurrent use.
type Encoder struct {
	params Params
	random *security.SecureRandomGenerator
	logger *slog.Logger
}

var defaultEncoder = &Encoder{
	params: DefaultParams(),
	random: security.NewSecureRandomGenerator(),
	logger: monitoring.Discard(),
}

// NewEncoder builds an Encoder. Without options it uses DefaultParams, crypto/rand and a discarding logger.
func NewEncoder(opts ...Option) (*Encoder, error) {
	e := &Encoder{
		params: DefaultParams(),
		random: security.NewSecureRandomGenerator(),
		logger: monitoring.Discard(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
	}

	return e, nil
}

// Encode hashes password with the default encoder: 101 PBKDF2-SHA512 rounds and a fresh 12-byte salt.
func Encode(password string) (string, error) {
	return defaultEncoder.Encode(password)
}

// Verify checks password against digest with the default encoder.
func Verify(password, digest string) (bool, error) {
	return defaultEncoder.Verify(password, digest)
}

// Params returns the parameters used for new digests.
func (e *Encoder) Params() Params {
	return e.params
}

// Encode derives a fresh digest for password.
//
// The key is first serialized the way modular-crypt tooling writes PBKDF2-SHA512
// ("$pbkdf2-sha512$<rounds>$<ab64 salt>$<ab64 key>"). The algorithm tag is then
// replaced with "7", and only after that is every '.' turned into '+'. Finally the
// key's "==" padding is appended.
func (e *Encoder) Encode(password string) (string, error) {
	if err := validatePassword(mqerr.Encode, password); err != nil {
		return "", err
	}

	salt, err := e.random.Generate(e.params.SaltLength)
	if err != nil {
		return "", mqerr.NewPrimitiveError(mqerr.Encode, err)
	}

	key := crypto.DeriveKey([]byte(password), salt, e.params.Iterations)

	modular := fmt.Sprintf("$%s$%d$%s$%s",
		modularCryptTag,
		e.params.Iterations,
		radix64.EncodeAdapted(salt),
		radix64.EncodeAdapted(key),
	)

	digest := strings.Replace(modular, modularCryptTag, AlgorithmPBKDF2SHA512, 1)
	digest = strings.ReplaceAll(digest, ".", "+")

	e.logger.Debug("password encoded",
		slog.Int("iterations", e.params.Iterations),
		slog.Int("salt_length", e.params.SaltLength),
	)

	return digest + keyPadding, nil
}

// Verify reports whether password matches digest. Both "$7$" and legacy "$6$" entries are supported.
func (e *Encoder) Verify(password, digest string) (bool, error) {
	if err := validatePassword(mqerr.Verify, password); err != nil {
		return false, err
	}

	parsed, err := ParseDigest(digest)
	if err != nil {
		return false, err
	}

	var computed []byte
	switch parsed.Algorithm {
	case AlgorithmSHA512:
		computed = crypto.HashSaltedSHA512([]byte(password), parsed.Salt)
	default:
		computed = crypto.DeriveKey([]byte(password), parsed.Salt, parsed.Iterations)
	}

	return crypto.Equal(computed, parsed.Key), nil
}

// NeedsRehash reports whether digest is weaker than what e would produce today:
// a legacy "$6$" entry, fewer rounds, or a shorter salt.
func (e *Encoder) NeedsRehash(digest string) (bool, error) {
	parsed, err := ParseDigest(digest)
	if err != nil {
		return false, err
	}

	if parsed.Algorithm != AlgorithmPBKDF2SHA512 {
		return true, nil
	}
	if parsed.Iterations < e.params.Iterations {
		return true, nil
	}
	if len(parsed.Salt) < e.params.SaltLength {
		return true, nil
	}

	return false, nil
}

// Passwords are used as raw UTF-8 bytes; no Unicode normalization is applied.
func validatePassword(action mqerr.Action, password string) error {
	if password == "" {
		return mqerr.NewInvalidInputError(action, "password is empty")
	}
	if !utf8.ValidString(password) {
		return mqerr.NewInvalidInputError(action, "password is not valid UTF-8")
	}
	if len(password) > MaxPasswordBytes {
		return mqerr.NewInvalidInputError(action, fmt.Sprintf("password exceeds %d bytes", MaxPasswordBytes))
	}
	return nil
}

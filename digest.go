package mqpasswd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hengadev/mqpasswd/internal/crypto"
	"github.com/hengadev/mqpasswd/internal/mqerr"
	"github.com/hengadev/mqpasswd/internal/radix64"
)

// Digest is a parsed password file credential.
type Digest struct {
	// Algorithm is AlgorithmPBKDF2SHA512 or AlgorithmSHA512.
	Algorithm string
	// Iterations is zero for AlgorithmSHA512.
	Iterations int
	Salt       []byte
	Key        []byte
}

// String renders d in the broker's format.
func (d Digest) String() string {
	salt := strings.TrimRight(radix64.EncodeStandard(d.Salt), "=")
	key := radix64.EncodeStandard(d.Key)
	if d.Algorithm == AlgorithmSHA512 {
		return fmt.Sprintf("$%s$%s$%s", d.Algorithm, salt, key)
	}
	return fmt.Sprintf("$%s$%d$%s$%s", d.Algorithm, d.Iterations, salt, key)
}

// ParseDigest parses a "$7$" or "$6$" password file entry. The modular-crypt form
// "$pbkdf2-sha512$..." with adapted base64 is accepted too and normalized to AlgorithmPBKDF2SHA512.
func ParseDigest(digest string) (Digest, error) {
	parts := strings.Split(digest, "$")
	if len(parts) < 2 || parts[0] != "" {
		return Digest{}, mqerr.NewInvalidFormatError(mqerr.Parse, "digest must start with '$'")
	}

	switch parts[1] {
	case AlgorithmPBKDF2SHA512:
		return parsePBKDF2(parts, radix64.DecodeStandard)
	case modularCryptTag:
		return parsePBKDF2(parts, radix64.DecodeAdapted)
	case AlgorithmSHA512:
		return parseSHA512(parts)
	default:
		return Digest{}, mqerr.NewUnsupportedAlgorithmError(parts[1])
	}
}

func parsePBKDF2(parts []string, decode func(string) ([]byte, error)) (Digest, error) {
	if len(parts) != 5 {
		return Digest{}, mqerr.NewInvalidFormatError(mqerr.Parse, "expected $7$<iterations>$<salt>$<key>")
	}

	iterations, err := parseIterations(parts[2])
	if err != nil {
		return Digest{}, mqerr.NewInvalidFormatError(mqerr.Parse, fmt.Sprintf("invalid iteration count '%s'", parts[2]))
	}

	salt, key, err := decodeSaltAndKey(parts[3], parts[4], decode)
	if err != nil {
		return Digest{}, err
	}

	return Digest{
		Algorithm:  AlgorithmPBKDF2SHA512,
		Iterations: iterations,
		Salt:       salt,
		Key:        key,
	}, nil
}

// parseIterations accepts only plain decimal digits within [MinIterations, MaxIterations].
func parseIterations(field string) (int, error) {
	if field == "" || strings.IndexFunc(field, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, mqerr.NewInvalidFormatError(mqerr.Parse, fmt.Sprintf("invalid iteration count '%s'", field))
	}
	iterations, err := strconv.Atoi(field)
	if err != nil || iterations < MinIterations || iterations > MaxIterations {
		return 0, mqerr.NewInvalidFormatError(mqerr.Parse,
			fmt.Sprintf("iteration count '%s' outside [%d, %d]", field, MinIterations, MaxIterations))
	}
	return iterations, nil
}

func parseSHA512(parts []string) (Digest, error) {
	if len(parts) != 4 {
		return Digest{}, mqerr.NewInvalidFormatError(mqerr.Parse, "expected $6$<salt>$<key>")
	}

	salt, key, err := decodeSaltAndKey(parts[2], parts[3], radix64.DecodeStandard)
	if err != nil {
		return Digest{}, err
	}

	return Digest{
		Algorithm: AlgorithmSHA512,
		Salt:      salt,
		Key:       key,
	}, nil
}

func decodeSaltAndKey(saltPart, keyPart string, decode func(string) ([]byte, error)) ([]byte, []byte, error) {
	salt, err := decode(saltPart)
	if err != nil || len(salt) == 0 {
		return nil, nil, mqerr.NewInvalidFormatError(mqerr.Parse, "invalid salt encoding")
	}

	key, err := decode(keyPart)
	if err != nil {
		return nil, nil, mqerr.NewInvalidFormatError(mqerr.Parse, "invalid key encoding")
	}
	if len(key) != crypto.KeyLength {
		return nil, nil, mqerr.NewInvalidFormatError(mqerr.Parse, fmt.Sprintf("key must be %d bytes, got %d", crypto.KeyLength, len(key)))
	}

	return salt, key, nil
}

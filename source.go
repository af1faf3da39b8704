package mqpasswd

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PasswordSource resolves a configuration reference to a plaintext password.
type PasswordSource interface {
	Password(ctx context.Context, ref string) (string, error)
}

// EnvSource reads passwords from environment variables; ref is the variable name.
type EnvSource struct{}

func (EnvSource) Password(ctx context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrSecretNotFound, ref)
	}
	return value, nil
}

// FileSource reads passwords from files, one per file; ref is the path.
// A single trailing newline is stripped.
type FileSource struct{}

func (FileSource) Password(ctx context.Context, ref string) (string, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: password file %s does not exist", ErrSecretNotFound, ref)
		}
		return "", fmt.Errorf("%w: read password file %s: %w", ErrSecretStorageUnavailable, ref, err)
	}
	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}

// StaticSource serves passwords from memory, keyed by ref.
type StaticSource map[string]string

func (s StaticSource) Password(ctx context.Context, ref string) (string, error) {
	value, ok := s[ref]
	if !ok {
		return "", fmt.Errorf("%w: no static password for %s", ErrSecretNotFound, ref)
	}
	return value, nil
}

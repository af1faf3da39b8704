package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// SecureRandomGenerator serializes reads from a random source.
// crypto/rand.Reader is already safe for concurrent use; caller-supplied readers usually are not.
type SecureRandomGenerator struct {
	reader io.Reader
	mutex  sync.Mutex
}

// NewSecureRandomGenerator creates a generator backed by crypto/rand.
func NewSecureRandomGenerator() *SecureRandomGenerator {
	return NewSecureRandomGeneratorFrom(rand.Reader)
}

// NewSecureRandomGeneratorFrom creates a generator backed by r.
func NewSecureRandomGeneratorFrom(r io.Reader) *SecureRandomGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &SecureRandomGenerator{reader: r}
}

// Read fills b completely or fails.
func (srg *SecureRandomGenerator) Read(b []byte) (int, error) {
	srg.mutex.Lock()
	defer srg.mutex.Unlock()

	n, err := io.ReadFull(srg.reader, b)
	if err != nil {
		return n, fmt.Errorf("secure random generation failed: %w", err)
	}

	return n, nil
}

// Generate generates a slice of secure random bytes
func (srg *SecureRandomGenerator) Generate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size: %d", size)
	}

	data := make([]byte, size)
	if _, err := srg.Read(data); err != nil {
		return nil, err
	}

	return data, nil
}

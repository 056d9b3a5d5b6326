package licensecrypto

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultKeyLength = 6
	MinKeyLength     = 4
	MaxKeyLength     = 32
)

func clampLength(n int) int {
	if n <= 0 {
		return DefaultKeyLength
	}
	if n < MinKeyLength {
		return MinKeyLength
	}
	if n > MaxKeyLength {
		return MaxKeyLength
	}
	return n
}

// GenerateLicenseKey returns a short lowercase hex key cut from a random UUID.
func GenerateLicenseKey(length int) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate license key: %w", err)
	}

	raw := strings.ReplaceAll(id.String(), "-", "")

	return raw[:clampLength(length)], nil
}

// KeyGenerator binds a key length so callers can hand it to the registry.
func KeyGenerator(length int) func() (string, error) {
	return func() (string, error) {
		return GenerateLicenseKey(length)
	}
}

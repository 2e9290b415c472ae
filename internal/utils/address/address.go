package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// PublicKeyLength is the size of a Solana account address in bytes
const PublicKeyLength = 32

var ErrInvalidAddress = errors.New("invalid solana address")

// Validate checks that s is a base58 encoded 32 byte public key and returns
// it trimmed
func Validate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	decoded, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != PublicKeyLength {
		return "", fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidAddress, len(decoded), PublicKeyLength)
	}
	return s, nil
}

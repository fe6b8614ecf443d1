// Package token generates booking redemption codes. Codes are short so that
// a beneficiary can read one out at a venue counter; the alphabet drops
// look-alike characters (0/O, 1/I).
package token

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	length   = 6
)

// Generate returns a new random redemption code. Uniqueness is enforced by
// the store, not here; callers retry on collision.
func Generate() (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	code := make([]byte, length)
	for i, b := range buf {
		code[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(code), nil
}

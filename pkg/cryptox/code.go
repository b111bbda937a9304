// Package cryptox generates the opaque invite codes users read out to each
// other.
package cryptox

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// CodeAlphabet is the set of characters invite codes are drawn from. The
// easily-confused 0/O, 1/I and L are excluded so a code survives being read
// over the phone or copied by hand.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// DefaultCodeLength balances brute-force resistance (31^8 ~ 8.5e11) against
// manual transcription.
const DefaultCodeLength = 8

// GenerateCode returns a random invite code of the given length drawn from
// CodeAlphabet using crypto/rand.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}

	// Rejection sampling keeps the character distribution uniform: a byte is
	// only used when it falls inside the largest multiple of len(alphabet).
	limit := byte(256 - 256%len(CodeAlphabet))

	var sb strings.Builder
	sb.Grow(length)

	buf := make([]byte, length)
	for sb.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("cryptox: read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			sb.WriteByte(CodeAlphabet[int(b)%len(CodeAlphabet)])
			if sb.Len() == length {
				break
			}
		}
	}

	return sb.String(), nil
}

// NormalizeCode canonicalises user input before lookup: surrounding
// whitespace is stripped and letters are upper-cased.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

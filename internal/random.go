package internal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// NewNumericKey returns a fixed-width numeric string of the given length,
// each digit drawn independently from crypto/rand. Used for password-reset
// keys delivered out of band.
func NewNumericKey(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid key digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	key := b.String()
	if len(key) != digits {
		return "", fmt.Errorf("invalid key generation length")
	}
	return key, nil
}

// NewReferralCode returns a six-digit random decimal string followed by the
// first three characters of username. Codes are display identifiers, not
// guaranteed globally unique.
func NewReferralCode(username string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	prefix := username
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	return fmt.Sprintf("%06d%s", n.Int64(), prefix), nil
}

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// Config defines a public type used by accountkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Argon2 defines a public type used by accountkit APIs.
//
// Argon2 instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Argon2 struct {
	config Config
}

// NewArgon2 describes the newargon2 operation and its observable behavior.
//
// NewArgon2 may return an error when input validation, dependency calls, or security checks fail.
// NewArgon2 does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Argon2{config: cfg}, nil
}

// GenerateSalt returns a fresh base64-encoded salt of the configured length,
// drawn from crypto/rand.
func (a *Argon2) GenerateSalt() (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// HashWithSalt derives the Argon2id digest of secret under the given
// base64-encoded salt and returns it base64-encoded. The derivation is
// deterministic for a fixed (secret, salt) pair.
//
// Secret processing uses raw string bytes exactly as provided (no Unicode normalization).
func (a *Argon2) HashWithSalt(secret, saltEncoded string) (string, error) {
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	salt, err := base64.StdEncoding.DecodeString(saltEncoded)
	if err != nil {
		return "", errors.New("invalid salt encoding")
	}
	if len(salt) < int(minSaltLength) {
		return "", errors.New("invalid salt length")
	}

	hash := argon2.IDKey(
		[]byte(secret),
		salt,
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return base64.StdEncoding.EncodeToString(hash), nil
}

// Verify reports whether secret hashes to encodedHash under the given salt.
// The digest comparison is constant-time. Malformed stored material verifies
// as false rather than failing: callers on the login path treat both cases as
// a credential mismatch.
func (a *Argon2) Verify(secret, saltEncoded, encodedHash string) bool {
	if secret == "" || encodedHash == "" {
		return false
	}

	expected, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil || len(expected) == 0 {
		return false
	}

	computed, err := a.HashWithSalt(secret, saltEncoded)
	if err != nil {
		return false
	}
	computedRaw, err := base64.StdEncoding.DecodeString(computed)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(computedRaw, expected) == 1
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("credential memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("credential time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("credential parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("credential salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("credential key length must be >= 16")
	}

	return nil
}

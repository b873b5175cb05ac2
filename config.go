package accountkit

import (
	"errors"
	"time"
)

// Config defines a public type used by accountkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token         TokenConfig
	Credential    CredentialConfig
	PasswordReset PasswordResetConfig
	Ledger        LedgerConfig
	Profile       ProfileConfig
	Store         StoreConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the session-token issuer. Secret and TTL are
// injected here at build time — there is no process-wide signing state.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig carries the argon2id work-factor parameters.
type CredentialConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
PASSWORD RESET CONFIG
====================================
*/

// PasswordResetConfig defines a public type used by accountkit APIs.
//
// PasswordResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordResetConfig struct {
	Enabled bool
	// KeyDigits is the length of the numeric reset key delivered to the
	// account's email. The key is generated from crypto/rand; six digits
	// preserves the platform's historical external contract and may be
	// widened without breaking verification.
	KeyDigits int
	// ThrottleEnabled turns on a Redis fixed-window throttle over reset
	// requests, keyed by the target email. Requires the bundled Redis store.
	ThrottleEnabled bool
	// MaxRequests is the number of reset requests allowed per email within
	// one ThrottleWindow.
	MaxRequests int
	// ThrottleWindow bounds the fixed window.
	ThrottleWindow time.Duration
}

/*
====================================
LEDGER CONFIG
====================================
*/

// LedgerConfig defines a public type used by accountkit APIs.
//
// LedgerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LedgerConfig struct {
	// AllowNegativeBalance permits balance adjustments that drive the stored
	// balance below zero. Off by default: the adjustment is rejected with
	// ErrInsufficientBalance and the stored value is unchanged.
	AllowNegativeBalance bool
}

/*
====================================
PROFILE CONFIG
====================================
*/

// ProfileConfig defines a public type used by accountkit APIs.
//
// ProfileConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ProfileConfig struct {
	// DefaultImage is the placeholder avatar URL assigned at registration.
	DefaultImage string
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig configures the bundled Redis store when the engine is built
// with [Builder.WithRedis]. Ignored when a custom [AccountStore] is supplied.
type StoreConfig struct {
	RedisPrefix string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by accountkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by accountkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the documented default configuration. The token
// secret is intentionally left empty and must be supplied before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    24 * time.Hour,
			Issuer: "accountkit",
		},
		Credential: CredentialConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		PasswordReset: PasswordResetConfig{
			Enabled:         true,
			KeyDigits:       6,
			ThrottleEnabled: false,
			MaxRequests:     5,
			ThrottleWindow:  15 * time.Minute,
		},
		Ledger: LedgerConfig{
			AllowNegativeBalance: false,
		},
		Profile: ProfileConfig{
			DefaultImage: "https://i.imgur.com/zfVoYFE.png",
		},
		Store: StoreConfig{
			RedisPrefix: "acct",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cross-field consistency. Builder.Build calls it before
// wiring any dependency.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) < 32 {
		return errors.New("Token Secret must be at least 32 bytes")
	}
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}

	// Credential
	if c.Credential.Memory < 8*1024 {
		return errors.New("Credential Memory must be >= 8192 KB")
	}
	if c.Credential.Time < 1 {
		return errors.New("Credential Time must be >= 1")
	}
	if c.Credential.Parallelism < 1 {
		return errors.New("Credential Parallelism must be >= 1")
	}
	if c.Credential.SaltLength < 16 {
		return errors.New("Credential SaltLength must be >= 16")
	}
	if c.Credential.KeyLength < 16 {
		return errors.New("Credential KeyLength must be >= 16")
	}

	// Password Reset
	if c.PasswordReset.Enabled {
		if c.PasswordReset.KeyDigits < 6 || c.PasswordReset.KeyDigits > 10 {
			return errors.New("PasswordReset KeyDigits must be between 6 and 10")
		}
		if c.PasswordReset.ThrottleEnabled {
			if c.PasswordReset.MaxRequests <= 0 {
				return errors.New("PasswordReset MaxRequests must be > 0 when the throttle is enabled")
			}
			if c.PasswordReset.ThrottleWindow <= 0 {
				return errors.New("PasswordReset ThrottleWindow must be > 0 when the throttle is enabled")
			}
		}
	}

	// Profile
	if c.Profile.DefaultImage == "" {
		return errors.New("Profile DefaultImage must not be empty")
	}

	// Store
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

package accountkit

import (
	"context"
)

// Counter identifies one of the whole-unit ledger counters on an account.
type Counter uint8

const (
	// CounterDeposits counts completed deposit operations.
	CounterDeposits Counter = iota
	// CounterWithdrawals counts completed withdrawal operations.
	CounterWithdrawals
	// CounterReferrals counts referred registrations credited to the account.
	CounterReferrals
)

// Field returns the stable store field name for the counter.
func (c Counter) Field() string {
	switch c {
	case CounterDeposits:
		return "deposits"
	case CounterWithdrawals:
		return "withdrawals"
	case CounterReferrals:
		return "referrals"
	default:
		return ""
	}
}

// Account is the full persisted account record. It carries credential
// material and is never returned to callers; flows hand out [Profile]
// values instead.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Salt         string
	ResetKeyHash string
	ReferralCode string
	Image        string
	Balance      int64
	Deposits     int64
	Withdrawals  int64
	Referrals    int64
	CreatedAt    int64
}

// Profile is the sanitized account view handed across the engine boundary.
// PasswordHash, Salt, and ResetKeyHash are structurally absent, not blanked.
type Profile struct {
	ID           string
	Username     string
	Email        string
	ReferralCode string
	Image        string
	Balance      int64
	Deposits     int64
	Withdrawals  int64
	Referrals    int64
	CreatedAt    int64
}

func sanitizeAccount(a *Account) Profile {
	return Profile{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		ReferralCode: a.ReferralCode,
		Image:        a.Image,
		Balance:      a.Balance,
		Deposits:     a.Deposits,
		Withdrawals:  a.Withdrawals,
		Referrals:    a.Referrals,
		CreatedAt:    a.CreatedAt,
	}
}

// ResetCandidate is the minimal record the reset-key verification path needs
// per pending reset: enough to re-hash a presented key with the owning
// account's salt and compare.
type ResetCandidate struct {
	AccountID    string
	Salt         string
	ResetKeyHash string
}

// AccountStore is the persistence collaborator boundary. The engine ships a
// Redis implementation in the redistore package; hosts may supply their own.
//
// Find methods report a missing record with [ErrAccountNotFound]; every other
// failure wraps [ErrPersistence]. Counter mutations must be atomic at the
// store level: two concurrent calls against the same account id must never
// lose an update.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Insert assigns a fresh id, enforces the store-level username and email
	// uniqueness constraints, and persists the record.
	Insert(ctx context.Context, account *Account) error
	// Save rewrites the credential and profile fields of an existing record.
	// It does not touch ledger counters.
	Save(ctx context.Context, account *Account) error
	// UpdateUsername re-validates global username uniqueness and moves the
	// username index in the same mutation.
	UpdateUsername(ctx context.Context, id, oldUsername, newUsername string) error
	// DeleteByID removes the record and its indexes. The bool reports whether
	// a record existed to remove.
	DeleteByID(ctx context.Context, id string) (bool, error)

	// AdjustBalance applies a signed delta to the balance atomically. When
	// allowNegative is false a result below zero is rejected with
	// [ErrInsufficientBalance] and the stored value is unchanged.
	AdjustBalance(ctx context.Context, id string, delta int64, allowNegative bool) (int64, error)
	// IncrementCounter adds exactly one to the named counter atomically.
	IncrementCounter(ctx context.Context, id string, counter Counter) (int64, error)

	SetResetKeyHash(ctx context.Context, id, keyHash string) error
	ClearResetKeyHash(ctx context.Context, id string) error
	// PendingResets lists every account with a reset key outstanding.
	PendingResets(ctx context.Context) ([]ResetCandidate, error)
}

// ResetNotifier delivers a plaintext reset key to the account's registered
// email. The transport (SMTP, queue, provider API) is the host's concern.
type ResetNotifier interface {
	DeliverResetKey(ctx context.Context, email, key string) error
}

// RegisterResult is returned by [Engine.Register].
type RegisterResult struct {
	AccountID    string
	ReferralCode string
	Token        string
}

// LoginResult is returned by [Engine.Login]. Profile is sanitized; Token is
// the opaque signed session token the host places on its transport.
type LoginResult struct {
	Profile Profile
	Token   string
}

// ProfilePatch carries the optional fields [Engine.UpdateProfile] honors.
// Nil pointers leave the stored value untouched.
type ProfilePatch struct {
	Username *string
	Image    *string
}

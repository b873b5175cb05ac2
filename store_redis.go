package accountkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/fbinvest/accountkit/redistore"
	"github.com/redis/go-redis/v9"
)

// redisAccountStore adapts the bundled redistore.Store onto the engine's
// [AccountStore] boundary and maps store sentinels onto the engine taxonomy.
type redisAccountStore struct {
	store *redistore.Store
}

func newRedisAccountStore(client redis.UniversalClient, prefix string) *redisAccountStore {
	return &redisAccountStore{
		store: redistore.New(client, prefix),
	}
}

func (r *redisAccountStore) FindByID(ctx context.Context, id string) (*Account, error) {
	rec, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return accountFromRecord(rec), nil
}

func (r *redisAccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	rec, err := r.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return accountFromRecord(rec), nil
}

func (r *redisAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	rec, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return accountFromRecord(rec), nil
}

func (r *redisAccountStore) Insert(ctx context.Context, account *Account) error {
	rec := recordFromAccount(account)
	if err := r.store.Insert(ctx, rec); err != nil {
		return mapStoreErr(err)
	}
	account.ID = rec.ID
	return nil
}

func (r *redisAccountStore) Save(ctx context.Context, account *Account) error {
	return mapStoreErr(r.store.Save(ctx, recordFromAccount(account)))
}

func (r *redisAccountStore) UpdateUsername(ctx context.Context, id, oldUsername, newUsername string) error {
	return mapStoreErr(r.store.UpdateUsername(ctx, id, oldUsername, newUsername))
}

func (r *redisAccountStore) DeleteByID(ctx context.Context, id string) (bool, error) {
	existed, err := r.store.DeleteByID(ctx, id)
	return existed, mapStoreErr(err)
}

func (r *redisAccountStore) AdjustBalance(ctx context.Context, id string, delta int64, allowNegative bool) (int64, error) {
	value, err := r.store.AdjustBalance(ctx, id, delta, allowNegative)
	return value, mapStoreErr(err)
}

func (r *redisAccountStore) IncrementCounter(ctx context.Context, id string, counter Counter) (int64, error) {
	value, err := r.store.IncrementCounter(ctx, id, counter.Field())
	return value, mapStoreErr(err)
}

func (r *redisAccountStore) SetResetKeyHash(ctx context.Context, id, keyHash string) error {
	return mapStoreErr(r.store.SetResetKeyHash(ctx, id, keyHash))
}

func (r *redisAccountStore) ClearResetKeyHash(ctx context.Context, id string) error {
	return mapStoreErr(r.store.ClearResetKeyHash(ctx, id))
}

func (r *redisAccountStore) PendingResets(ctx context.Context) ([]ResetCandidate, error) {
	candidates, err := r.store.PendingResets(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	out := make([]ResetCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = ResetCandidate{
			AccountID:    c.AccountID,
			Salt:         c.Salt,
			ResetKeyHash: c.ResetKeyHash,
		}
	}
	return out, nil
}

// mapStoreErr translates redistore sentinels into the engine error taxonomy.
// A duplicate username surfaces as [ErrDuplicateAccount]; a duplicate email is
// a store-level constraint violation and stays under [ErrPersistence].
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, redistore.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, redistore.ErrDuplicateUsername):
		return ErrDuplicateAccount
	case errors.Is(err, redistore.ErrDuplicateEmail):
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	case errors.Is(err, redistore.ErrInsufficientBalance):
		return ErrInsufficientBalance
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

func accountFromRecord(rec *redistore.Record) *Account {
	return &Account{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Salt:         rec.Salt,
		ResetKeyHash: rec.ResetKeyHash,
		ReferralCode: rec.ReferralCode,
		Image:        rec.Image,
		Balance:      rec.Balance,
		Deposits:     rec.Deposits,
		Withdrawals:  rec.Withdrawals,
		Referrals:    rec.Referrals,
		CreatedAt:    rec.CreatedAt,
	}
}

func recordFromAccount(a *Account) *redistore.Record {
	return &redistore.Record{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Salt:         a.Salt,
		ResetKeyHash: a.ResetKeyHash,
		ReferralCode: a.ReferralCode,
		Image:        a.Image,
		Balance:      a.Balance,
		Deposits:     a.Deposits,
		Withdrawals:  a.Withdrawals,
		Referrals:    a.Referrals,
		CreatedAt:    a.CreatedAt,
	}
}

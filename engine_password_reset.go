package accountkit

import (
	"context"
	"errors"

	"github.com/fbinvest/accountkit/internal"
)

// RequestPasswordReset generates a numeric reset key for the account
// registered under email, persists its hash, and delivers the plaintext key
// through the configured [ResetNotifier].
//
// The bool reports whether a key was issued. An unknown email returns
// (false, nil) so callers cannot probe for registered addresses. A fresh
// request supersedes any earlier outstanding key for the same account. When
// delivery fails the persisted key is kept and [ErrNotificationFailed] is
// returned: the user can retry delivery without invalidating the key.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (bool, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	if !e.config.PasswordReset.Enabled {
		return false, nil
	}
	if e.notifier == nil {
		return false, ErrNotificationUnconfigured
	}

	// The throttle runs before the account lookup so probing an address
	// costs a window slot whether or not it is registered.
	if e.limiter != nil {
		if err := e.limiter.Allow(ctx, email); err != nil {
			if errors.Is(err, ErrResetThrottled) {
				e.metricInc(MetricResetThrottled)
				e.emitAudit(ctx, auditEventResetThrottled, false, "", ErrResetThrottled, nil)
			}
			return false, err
		}
	}

	account, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		e.emitAudit(ctx, auditEventResetFailure, false, "", err, nil)
		return false, err
	}

	key, err := internal.NewNumericKey(e.config.PasswordReset.KeyDigits)
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "key_generation",
			}
		})
		return false, err
	}

	keyHash, err := e.hasher.HashWithSalt(key, account.Salt)
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "key_hash",
			}
		})
		return false, err
	}

	if err := e.store.SetResetKeyHash(ctx, account.ID, keyHash); err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "key_persist",
			}
		})
		return false, err
	}

	if err := e.notifier.DeliverResetKey(ctx, account.Email, key); err != nil {
		// The key stays valid; only delivery failed.
		e.metricInc(MetricNotificationFailure)
		e.emitAudit(ctx, auditEventNotificationFailure, false, account.ID, ErrNotificationFailed, nil)
		return false, ErrNotificationFailed
	}

	e.metricInc(MetricResetRequested)
	e.emitAudit(ctx, auditEventResetRequested, true, account.ID, nil, nil)

	return true, nil
}

// VerifyResetKey reports whether key matches any outstanding password reset.
// Each candidate's stored hash was derived under that account's own salt, so
// the presented key is re-hashed per candidate and compared in constant time.
func (e *Engine) VerifyResetKey(ctx context.Context, key string) (bool, error) {
	if e == nil || e.store == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}

	account, err := e.matchResetKey(ctx, key)
	if err != nil {
		return false, err
	}
	if account == "" {
		e.metricInc(MetricResetKeyRejected)
		return false, nil
	}

	e.metricInc(MetricResetKeyVerified)
	e.emitAudit(ctx, auditEventResetKeyVerified, true, account, nil, nil)

	return true, nil
}

// CompletePasswordReset consumes a reset key: it locates the matching pending
// account, re-salts and re-hashes the new password, and clears the key so it
// cannot be replayed. A key matching no pending reset fails with
// [ErrResetKeyInvalid].
func (e *Engine) CompletePasswordReset(ctx context.Context, key, newPassword string) error {
	if e == nil || e.store == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	accountID, err := e.matchResetKey(ctx, key)
	if err != nil {
		return err
	}
	if accountID == "" {
		e.metricInc(MetricResetKeyRejected)
		e.emitAudit(ctx, auditEventResetFailure, false, "", ErrResetKeyInvalid, nil)
		return ErrResetKeyInvalid
	}

	account, err := e.store.FindByID(ctx, accountID)
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, accountID, err, nil)
		return err
	}

	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": "salt_generation",
			}
		})
		return err
	}

	passwordHash, err := e.hasher.HashWithSalt(newPassword, salt)
	if err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": "password_hash",
			}
		})
		return err
	}
	newPassword = ""

	account.Salt = salt
	account.PasswordHash = passwordHash
	account.ResetKeyHash = ""

	if err := e.store.Save(ctx, account); err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": "save_failed",
			}
		})
		return err
	}

	if err := e.store.ClearResetKeyHash(ctx, accountID); err != nil {
		e.emitAudit(ctx, auditEventResetFailure, false, accountID, err, func() map[string]string {
			return map[string]string{
				"reason": "clear_failed",
			}
		})
		return err
	}

	e.metricInc(MetricResetCompleted)
	e.emitAudit(ctx, auditEventResetCompleted, true, accountID, nil, nil)

	return nil
}

// matchResetKey returns the account id whose outstanding reset key matches
// the presented key, or "" when no candidate matches. The candidate walk is
// bounded by the number of resets currently outstanding.
func (e *Engine) matchResetKey(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	candidates, err := e.store.PendingResets(ctx)
	if err != nil {
		return "", err
	}

	for _, c := range candidates {
		if e.hasher.Verify(key, c.Salt, c.ResetKeyHash) {
			return c.AccountID, nil
		}
	}

	return "", nil
}

package accountkit

import (
	"context"
	"errors"
	"time"

	"github.com/fbinvest/accountkit/internal"
)

// Register creates a new account with zero ledger counters and returns the
// assigned id, the generated referral code, and a signed session token
// carrying the username as its identity claim.
//
// The username is the uniqueness handle: a taken username fails with
// [ErrDuplicateAccount] before anything is persisted. Email uniqueness is a
// store-level constraint; a conflict there surfaces wrapped in
// [ErrPersistence].
func (e *Engine) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	if e == nil || e.store == nil || e.hasher == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if username == "" || email == "" || password == "" {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "empty_input",
			}
		})
		return nil, ErrInvalidCredentials
	}

	_, err := e.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrDuplicateAccount, func() map[string]string {
			return map[string]string{
				"username": username,
			}
		})
		return nil, ErrDuplicateAccount
	case errors.Is(err, ErrAccountNotFound):
	default:
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, nil)
		return nil, err
	}

	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "salt_generation",
			}
		})
		return nil, err
	}

	passwordHash, err := e.hasher.HashWithSalt(password, salt)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "password_hash",
			}
		})
		return nil, err
	}
	password = ""

	referralCode, err := internal.NewReferralCode(username)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "referral_code_generation",
			}
		})
		return nil, err
	}

	account := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		ReferralCode: referralCode,
		Image:        e.config.Profile.DefaultImage,
		CreatedAt:    time.Now().Unix(),
	}

	if err := e.store.Insert(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			// Lost the username index race after the pre-check.
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditEventRegisterDuplicate, false, "", ErrDuplicateAccount, func() map[string]string {
				return map[string]string{
					"username": username,
				}
			})
			return nil, ErrDuplicateAccount
		}
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"reason": "insert_failed",
			}
		})
		return nil, err
	}

	token, err := e.tokens.Issue(account.ID, username)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_issue",
			}
		})
		return nil, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegisterSuccess, true, account.ID, nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})

	return &RegisterResult{
		AccountID:    account.ID,
		ReferralCode: referralCode,
		Token:        token,
	}, nil
}

package accountkit

import (
	"context"
	"errors"
	"time"
)

// Login authenticates by email and password and returns the sanitized profile
// plus a signed session token carrying the email as its identity claim.
//
// A missing account fails with [ErrAccountNotFound]; a wrong password against
// an existing account fails with [ErrInvalidCredentials]. The two outcomes
// are never conflated.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.store == nil || e.hasher == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricLoginLatency, time.Since(start))
		}()
	}

	if email == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "empty_input",
			}
		})
		return nil, ErrInvalidCredentials
	}

	account, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricLoginNotFound)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrAccountNotFound, func() map[string]string {
				return map[string]string{
					"reason": "account_not_found",
				}
			})
			return nil, ErrAccountNotFound
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, nil)
		return nil, err
	}

	if !e.hasher.Verify(password, account.Salt, account.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}
	password = ""

	token, err := e.tokens.Issue(account.ID, account.Email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_issue",
			}
		})
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, account.ID, nil, nil)

	return &LoginResult{
		Profile: sanitizeAccount(account),
		Token:   token,
	}, nil
}

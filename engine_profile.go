package accountkit

import (
	"context"
)

// Profile returns the sanitized view of the account. Credential fields are
// structurally absent from the result, not blanked.
func (e *Engine) Profile(ctx context.Context, id string) (*Profile, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := sanitizeAccount(account)
	return &p, nil
}

// UpdateProfile applies the non-nil fields of patch to the account and
// returns the updated sanitized profile. A username change re-validates
// global uniqueness and moves the username index in the same store mutation;
// a lost claim fails with [ErrDuplicateAccount] and leaves the record
// unchanged.
func (e *Engine) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Profile, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	account, err := e.store.FindByID(ctx, id)
	if err != nil {
		e.emitAudit(ctx, auditEventProfileUpdated, false, id, err, nil)
		return nil, err
	}

	if patch.Username != nil && *patch.Username != account.Username {
		if *patch.Username == "" {
			return nil, ErrInvalidCredentials
		}
		if err := e.store.UpdateUsername(ctx, id, account.Username, *patch.Username); err != nil {
			e.emitAudit(ctx, auditEventProfileUpdated, false, id, err, func() map[string]string {
				return map[string]string{
					"field": "username",
				}
			})
			return nil, err
		}
		account.Username = *patch.Username
	}

	if patch.Image != nil && *patch.Image != account.Image {
		account.Image = *patch.Image
		if err := e.store.Save(ctx, account); err != nil {
			e.emitAudit(ctx, auditEventProfileUpdated, false, id, err, func() map[string]string {
				return map[string]string{
					"field": "image",
				}
			})
			return nil, err
		}
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdated, true, id, nil, nil)

	p := sanitizeAccount(account)
	return &p, nil
}

// DeleteAccount removes the account, its uniqueness indexes, and any pending
// reset state. The bool reports whether an account existed to remove;
// deleting an unknown id is not an error.
func (e *Engine) DeleteAccount(ctx context.Context, id string) (bool, error) {
	if e == nil || e.store == nil {
		return false, ErrEngineNotReady
	}

	existed, err := e.store.DeleteByID(ctx, id)
	if err != nil {
		e.emitAudit(ctx, auditEventAccountDeleted, false, id, err, nil)
		return false, err
	}
	if existed {
		e.metricInc(MetricAccountDeleted)
		e.emitAudit(ctx, auditEventAccountDeleted, true, id, nil, nil)
	}

	return existed, nil
}

package accountkit

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegisterSuccess     = "register_success"
	auditEventRegisterDuplicate   = "register_duplicate"
	auditEventRegisterFailure     = "register_failure"
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventResetRequested      = "password_reset_requested"
	auditEventResetKeyVerified    = "password_reset_key_verified"
	auditEventResetCompleted      = "password_reset_completed"
	auditEventResetThrottled      = "password_reset_throttled"
	auditEventResetFailure        = "password_reset_failure"
	auditEventBalanceAdjusted     = "balance_adjusted"
	auditEventBalanceRejected     = "balance_rejected"
	auditEventCounterIncremented  = "counter_incremented"
	auditEventProfileUpdated      = "profile_updated"
	auditEventAccountDeleted      = "account_deleted"
	auditEventNotificationFailure = "notification_failure"
)

// AuditErrorCode defines a public type used by accountkit APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrDuplicate           AuditErrorCode = "duplicate"
	auditErrNotFound            AuditErrorCode = "account_not_found"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrPersistence         AuditErrorCode = "store_unavailable"
	auditErrNotification        AuditErrorCode = "notification_failed"
	auditErrInsufficientBalance AuditErrorCode = "insufficient_balance"
	auditErrResetKeyInvalid     AuditErrorCode = "reset_key_invalid"
	auditErrResetThrottled      AuditErrorCode = "reset_throttled"
	auditErrInvalidToken        AuditErrorCode = "invalid_token"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrDuplicateAccount):
		return auditErrDuplicate
	case errors.Is(err, ErrAccountNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrPersistence):
		return auditErrPersistence
	case errors.Is(err, ErrNotificationFailed),
		errors.Is(err, ErrNotificationUnconfigured):
		return auditErrNotification
	case errors.Is(err, ErrInsufficientBalance):
		return auditErrInsufficientBalance
	case errors.Is(err, ErrResetKeyInvalid):
		return auditErrResetKeyInvalid
	case errors.Is(err, ErrResetThrottled):
		return auditErrResetThrottled
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	default:
		return auditErrInternal
	}
}

package accountkit

import "errors"

var (
	// ErrDuplicateAccount is returned by [Engine.Register] when the requested
	// username is already taken.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound is returned when a lookup by id or email yields no
	// account. It is never conflated with [ErrInvalidCredentials].
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials is returned by [Engine.Login] when the account
	// exists but password verification failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPersistence is returned when the store operation itself failed:
	// connectivity loss, or a constraint violation not otherwise classified
	// (such as the store-level email uniqueness index).
	ErrPersistence = errors.New("account store unavailable")
	// ErrNotificationFailed is returned by [Engine.RequestPasswordReset] when
	// the reset-key delivery step failed. The persisted key is not rolled
	// back.
	ErrNotificationFailed = errors.New("reset notification delivery failed")
	// ErrInsufficientBalance is returned by [Engine.AdjustBalance] when the
	// adjustment would drive the balance negative and
	// [LedgerConfig.AllowNegativeBalance] is false.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrResetKeyInvalid is returned by [Engine.CompletePasswordReset] when
	// the presented key matches no pending reset.
	ErrResetKeyInvalid = errors.New("reset key invalid")
	// ErrNotificationUnconfigured is returned when a reset is requested but
	// no [ResetNotifier] was wired at build time.
	ErrNotificationUnconfigured = errors.New("reset notifier not configured")
	// ErrResetThrottled is returned by [Engine.RequestPasswordReset] when the
	// per-email request throttle is enabled and exhausted for the current
	// window.
	ErrResetThrottled = errors.New("reset requests throttled")
	// ErrTokenInvalid is returned by token verification for malformed,
	// tampered, or expired session tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrEngineNotReady is returned when an Engine method is invoked on an
	// instance that was not produced by [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)

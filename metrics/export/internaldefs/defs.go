package internaldefs

import (
	accountkit "github.com/fbinvest/accountkit"
)

// CounterDef defines a public type used by accountkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   accountkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by accountkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   accountkit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the account engine.
var CounterDefs = []CounterDef{
	{ID: accountkit.MetricRegisterSuccess, Name: "accountkit_register_success_total", Help: "Successful account registrations."},
	{ID: accountkit.MetricRegisterDuplicate, Name: "accountkit_register_duplicate_total", Help: "Registrations rejected as duplicate username."},
	{ID: accountkit.MetricRegisterFailure, Name: "accountkit_register_failure_total", Help: "Failed account registrations."},
	{ID: accountkit.MetricLoginSuccess, Name: "accountkit_login_success_total", Help: "Successful login attempts."},
	{ID: accountkit.MetricLoginFailure, Name: "accountkit_login_failure_total", Help: "Failed login attempts."},
	{ID: accountkit.MetricLoginNotFound, Name: "accountkit_login_not_found_total", Help: "Login attempts against unknown accounts."},
	{ID: accountkit.MetricResetRequested, Name: "accountkit_reset_requested_total", Help: "Password reset keys issued and delivered."},
	{ID: accountkit.MetricResetKeyVerified, Name: "accountkit_reset_key_verified_total", Help: "Reset keys that matched a pending reset."},
	{ID: accountkit.MetricResetKeyRejected, Name: "accountkit_reset_key_rejected_total", Help: "Presented reset keys matching no pending reset."},
	{ID: accountkit.MetricResetThrottled, Name: "accountkit_reset_throttled_total", Help: "Reset requests rejected by the per-email throttle."},
	{ID: accountkit.MetricResetCompleted, Name: "accountkit_reset_completed_total", Help: "Completed password resets."},
	{ID: accountkit.MetricNotificationFailure, Name: "accountkit_notification_failure_total", Help: "Failed reset key deliveries."},
	{ID: accountkit.MetricBalanceAdjusted, Name: "accountkit_balance_adjusted_total", Help: "Applied balance adjustments."},
	{ID: accountkit.MetricBalanceRejected, Name: "accountkit_balance_rejected_total", Help: "Balance adjustments rejected at the zero floor."},
	{ID: accountkit.MetricCounterIncremented, Name: "accountkit_counter_incremented_total", Help: "Ledger counter increments."},
	{ID: accountkit.MetricProfileUpdated, Name: "accountkit_profile_updated_total", Help: "Profile update operations."},
	{ID: accountkit.MetricAccountDeleted, Name: "accountkit_account_deleted_total", Help: "Account delete operations."},
}

// HistogramDefs is an exported constant or variable used by the account engine.
var HistogramDefs = []HistogramDef{
	{ID: accountkit.MetricLoginLatency, Name: "accountkit_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the account engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the account engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

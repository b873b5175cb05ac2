package accountkit

import (
	"context"
	"errors"
	"strconv"
)

// AdjustBalance applies a signed delta in minor units to the account's
// balance and returns the balance after the adjustment. The check-and-write
// is a single store-level atomic operation, so concurrent adjustments against
// one account never lose an update.
//
// Unless [LedgerConfig.AllowNegativeBalance] is set, an adjustment that would
// drive the balance below zero is rejected with [ErrInsufficientBalance] and
// the stored value is unchanged.
func (e *Engine) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}

	value, err := e.store.AdjustBalance(ctx, id, delta, e.config.Ledger.AllowNegativeBalance)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			e.metricInc(MetricBalanceRejected)
			e.emitAudit(ctx, auditEventBalanceRejected, false, id, ErrInsufficientBalance, func() map[string]string {
				return map[string]string{
					"delta": strconv.FormatInt(delta, 10),
				}
			})
			return value, ErrInsufficientBalance
		}
		e.emitAudit(ctx, auditEventBalanceRejected, false, id, err, nil)
		return 0, err
	}

	e.metricInc(MetricBalanceAdjusted)
	e.emitAudit(ctx, auditEventBalanceAdjusted, true, id, nil, func() map[string]string {
		return map[string]string{
			"delta": strconv.FormatInt(delta, 10),
		}
	})

	return value, nil
}

// IncrementDeposits adds exactly one to the account's deposits counter and
// returns the new value.
func (e *Engine) IncrementDeposits(ctx context.Context, id string) (int64, error) {
	return e.incrementCounter(ctx, id, CounterDeposits)
}

// IncrementWithdrawals adds exactly one to the account's withdrawals counter
// and returns the new value.
func (e *Engine) IncrementWithdrawals(ctx context.Context, id string) (int64, error) {
	return e.incrementCounter(ctx, id, CounterWithdrawals)
}

// IncrementReferrals adds exactly one to the account's referrals counter and
// returns the new value.
func (e *Engine) IncrementReferrals(ctx context.Context, id string) (int64, error) {
	return e.incrementCounter(ctx, id, CounterReferrals)
}

func (e *Engine) incrementCounter(ctx context.Context, id string, counter Counter) (int64, error) {
	if e == nil || e.store == nil {
		return 0, ErrEngineNotReady
	}

	value, err := e.store.IncrementCounter(ctx, id, counter)
	if err != nil {
		e.emitAudit(ctx, auditEventCounterIncremented, false, id, err, func() map[string]string {
			return map[string]string{
				"counter": counter.Field(),
			}
		})
		return 0, err
	}

	e.metricInc(MetricCounterIncremented)
	e.emitAudit(ctx, auditEventCounterIncremented, true, id, nil, func() map[string]string {
		return map[string]string{
			"counter": counter.Field(),
		}
	})

	return value, nil
}

package accountkit

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestAdjustBalance(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	balance, err := engine.AdjustBalance(ctx, res.AccountID, 10_000)
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if balance != 10_000 {
		t.Fatalf("balance after credit = %d, want 10000", balance)
	}

	balance, err = engine.AdjustBalance(ctx, res.AccountID, -2_500)
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if balance != 7_500 {
		t.Fatalf("balance after debit = %d, want 7500", balance)
	}
}

func TestAdjustBalanceFloor(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	if _, err := engine.AdjustBalance(ctx, res.AccountID, 100); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	_, err := engine.AdjustBalance(ctx, res.AccountID, -101)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// A rejected debit leaves the balance untouched.
	profile, err := engine.Profile(ctx, res.AccountID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Balance != 100 {
		t.Fatalf("balance after rejected debit = %d, want 100", profile.Balance)
	}

	// Debiting exactly to zero is allowed.
	balance, err := engine.AdjustBalance(ctx, res.AccountID, -100)
	if err != nil {
		t.Fatalf("debit to zero failed: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance after debit to zero = %d, want 0", balance)
	}
}

func TestAdjustBalanceAllowNegative(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)
	engine.config.Ledger.AllowNegativeBalance = true
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	balance, err := engine.AdjustBalance(ctx, res.AccountID, -250)
	if err != nil {
		t.Fatalf("overdraft debit failed: %v", err)
	}
	if balance != -250 {
		t.Fatalf("balance = %d, want -250", balance)
	}
}

func TestAdjustBalanceUnknownAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)

	if _, err := engine.AdjustBalance(ctx, "missing", 10); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestIncrementCounters(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	if n, err := engine.IncrementDeposits(ctx, res.AccountID); err != nil || n != 1 {
		t.Fatalf("IncrementDeposits = %d, %v; want 1, nil", n, err)
	}
	if n, err := engine.IncrementDeposits(ctx, res.AccountID); err != nil || n != 2 {
		t.Fatalf("second IncrementDeposits = %d, %v; want 2, nil", n, err)
	}
	if n, err := engine.IncrementWithdrawals(ctx, res.AccountID); err != nil || n != 1 {
		t.Fatalf("IncrementWithdrawals = %d, %v; want 1, nil", n, err)
	}
	if n, err := engine.IncrementReferrals(ctx, res.AccountID); err != nil || n != 1 {
		t.Fatalf("IncrementReferrals = %d, %v; want 1, nil", n, err)
	}

	profile, err := engine.Profile(ctx, res.AccountID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Deposits != 2 || profile.Withdrawals != 1 || profile.Referrals != 1 {
		t.Fatalf("counters = %d/%d/%d, want 2/1/1", profile.Deposits, profile.Withdrawals, profile.Referrals)
	}
}

func TestIncrementCounterUnknownAccount(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)

	if _, err := engine.IncrementDeposits(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestIncrementCounterConcurrent(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	engine := newTestEngine(t, rdb, nil)
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	const workers = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.IncrementDeposits(ctx, res.AccountID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	profile, err := engine.Profile(ctx, res.AccountID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Deposits != workers {
		t.Fatalf("deposits after %d concurrent increments = %d", workers, profile.Deposits)
	}
}

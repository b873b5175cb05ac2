package accountkit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fbinvest/accountkit/credential"
	"github.com/fbinvest/accountkit/token"
	"github.com/redis/go-redis/v9"
)

var testTokenSecret = []byte("0123456789abcdef0123456789abcdef")

type mockNotifier struct {
	mu        sync.Mutex
	delivered []deliveredKey
	failWith  error
}

type deliveredKey struct {
	email string
	key   string
}

func (m *mockNotifier) DeliverResetKey(_ context.Context, email, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}
	m.delivered = append(m.delivered, deliveredKey{email: email, key: key})
	return nil
}

func (m *mockNotifier) lastKey(t *testing.T) deliveredKey {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.delivered) == 0 {
		t.Fatal("expected at least one delivered reset key")
	}
	return m.delivered[len(m.delivered)-1]
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHasher(t *testing.T) *credential.Argon2 {
	t.Helper()

	h, err := credential.NewArgon2(credential.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func newTestTokens(t *testing.T) *token.Manager {
	t.Helper()

	cfg := defaultConfig()
	tm, err := token.NewManager(token.Config{
		Secret: testTokenSecret,
		TTL:    cfg.Token.TTL,
		Issuer: cfg.Token.Issuer,
	})
	if err != nil {
		t.Fatalf("token.NewManager failed: %v", err)
	}
	return tm
}

func newTestEngine(t *testing.T, rdb *redis.Client, notifier ResetNotifier) *Engine {
	t.Helper()

	cfg := defaultConfig()
	cfg.Token.Secret = testTokenSecret

	return &Engine{
		config:   cfg,
		store:    newRedisAccountStore(rdb, cfg.Store.RedisPrefix),
		hasher:   newTestHasher(t),
		tokens:   newTestTokens(t),
		notifier: notifier,
	}
}

func registerTestAccount(t *testing.T, e *Engine, username, email, password string) *RegisterResult {
	t.Helper()

	res, err := e.Register(context.Background(), username, email, password)
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return res
}

func TestBuilderBuildWiresEngine(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.Token.Secret = testTokenSecret

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithNotifier(&mockNotifier{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	res, err := engine.Register(context.Background(), "alice", "alice@example.com", "correct-horse-42")
	if err != nil {
		t.Fatalf("Register via built engine failed: %v", err)
	}
	if res.AccountID == "" || res.Token == "" {
		t.Fatalf("expected populated result, got %+v", res)
	}
}

func TestBuilderRequiresStoreOrRedis(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.Secret = testTokenSecret

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected Build without redis or store to fail")
	}
}

func TestBuilderRejectsShortSecret(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.Token.Secret = []byte("short")

	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected Build with short token secret to fail")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.Token.Secret = testTokenSecret

	b := New().WithConfig(cfg).WithRedis(rdb)
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build on same builder to fail")
	}
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	engine := newTestEngine(t, rdb, nil)
	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	subject, name, err := engine.VerifyToken(res.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if subject != res.AccountID {
		t.Fatalf("expected subject %q, got %q", res.AccountID, subject)
	}
	if name != "alice" {
		t.Fatalf("expected name claim alice, got %q", name)
	}

	if _, _, err := engine.VerifyToken(res.Token + "x"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

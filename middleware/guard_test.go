package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	accountkit "github.com/fbinvest/accountkit"
	"github.com/redis/go-redis/v9"
)

func newGuardedEngine(t *testing.T) (*accountkit.Engine, string, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := accountkit.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	engine, err := accountkit.New().
		WithConfig(cfg).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	res, err := engine.Register(context.Background(), "alice", "alice@example.com", "correct-horse-42")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return engine, res.AccountID, res.Token
}

func TestGuardPassesValidToken(t *testing.T) {
	engine, accountID, token := newGuardedEngine(t)

	var seen *Identity
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.AccountID != accountID || seen.Name != "alice" {
		t.Fatalf("unexpected identity %+v", seen)
	}
}

func TestGuardRejectsMissingOrBadToken(t *testing.T) {
	engine, _, token := newGuardedEngine(t)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, tc := range []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"tampered", "Bearer " + token + "x"},
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", tc.name, rec.Code)
		}
	}
}

func TestGuardNilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

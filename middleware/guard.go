package middleware

import (
	"context"
	"net/http"
	"strings"

	accountkit "github.com/fbinvest/accountkit"
)

// Identity carries the verified subject of a request's session token.
type Identity struct {
	// AccountID is the token subject.
	AccountID string
	// Name is the identity claim embedded at issue time: the username for
	// registration tokens, the email for login tokens.
	Name string
}

type identityContextKey struct{}

// IdentityFromContext returns the [Identity] injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}

// Guard wraps a handler with bearer-token enforcement. Requests without a
// valid session token are rejected with 401 before reaching the handler.
func Guard(engine *accountkit.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			accountID, name, err := engine.VerifyToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, &Identity{
				AccountID: accountID,
				Name:      name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

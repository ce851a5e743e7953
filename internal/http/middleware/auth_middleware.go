package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
)

type contextKey string

const (
	OperatorContextKey contextKey = "operator"
	SessionContextKey  contextKey = "session"

	OperatorKeyHeader = "X-Operator-Key"
)

type OperatorIdentity struct {
	Method  string
	TokenID string
}

// RequireOperator accepts either the raw operator key header or a bearer
// operator token. Both failures get the same response.
func RequireOperator(auth *security.OperatorAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, method, ok := authenticateOperator(auth, r)
			if !ok {
				observability.RecordOperatorAuth(r.Context(), method, "rejected")
				observability.Audit(r, "operator.auth.rejected", "auth_method", method)
				response.Error(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "operator credential required", nil)
				return
			}
			observability.RecordOperatorAuth(r.Context(), method, "accepted")
			ctx := context.WithValue(r.Context(), OperatorContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticateOperator(auth *security.OperatorAuthenticator, r *http.Request) (*OperatorIdentity, string, bool) {
	if key := r.Header.Get(OperatorKeyHeader); key != "" {
		if err := auth.VerifyKey(key); err != nil {
			return nil, "key", false
		}
		return &OperatorIdentity{Method: "key"}, "key", true
	}
	raw := BearerToken(r)
	if raw == "" {
		return nil, "none", false
	}
	claims, err := auth.VerifyToken(raw)
	if err != nil {
		return nil, "bearer", false
	}
	return &OperatorIdentity{Method: "bearer", TokenID: claims.ID}, "bearer", true
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func OperatorFromContext(ctx context.Context) (*OperatorIdentity, bool) {
	id, ok := ctx.Value(OperatorContextKey).(*OperatorIdentity)
	return id, ok
}

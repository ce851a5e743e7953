package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type sessionState struct {
	session *domain.Session
	created bool
}

// Session resolves the session cookie into a session value for the request.
// Unknown or missing cookies yield a fresh locked session that is not stored.
func Session(gate *service.SessionGate, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, created, err := gate.Load(r.Context(), security.GetCookie(r, cookieName))
			if err != nil {
				slog.ErrorContext(r.Context(), "session load failed", "error", err)
				response.Error(w, r, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "session store unavailable, please retry", nil)
				return
			}
			ctx := context.WithValue(r.Context(), SessionContextKey, &sessionState{session: session, created: created})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	st, ok := ctx.Value(SessionContextKey).(*sessionState)
	if !ok || st.session == nil {
		return nil, false
	}
	return st.session, true
}

func SessionCreated(ctx context.Context) bool {
	st, ok := ctx.Value(SessionContextKey).(*sessionState)
	return ok && st.created
}

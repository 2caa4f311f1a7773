package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pubdocs/pubdocs/internal/auth"
)

// SessionResumer restores a login session into a request scope.
type SessionResumer interface {
	Resume(ctx context.Context, sess *auth.Session, token string) error
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger        *slog.Logger
	Authenticator SessionResumer
	// CookieName is the session cookie checked when no bearer token is sent.
	CookieName string
}

// Session opens a request scope for every request and, when the request
// carries a session token, resolves it into the scope's identity.
// A missing or rejected token leaves the request unauthenticated; handlers
// decide whether that is an error. The scope is torn down when the request ends.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, sess, release := auth.NewScope(r.Context())
			defer release()

			if token := extractSessionToken(r, cfg.CookieName); token != "" {
				if err := cfg.Authenticator.Resume(ctx, sess, token); err != nil {
					level := slog.LevelDebug
					if !errors.Is(err, auth.ErrInvalidToken) {
						level = slog.LevelError
					}
					cfg.Logger.Log(ctx, level, "session not resumed",
						slog.String("error", err.Error()),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(ctx)),
					)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests whose scope has no identity.
// Must be applied after Session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.SessionFromContext(r.Context()).IsAuthenticated() {
			writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractSessionToken reads "Authorization: Bearer <token>" and falls back
// to the session cookie.
func extractSessionToken(r *http.Request, cookieName string) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeError writes a JSON error in the same shape handlers use.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

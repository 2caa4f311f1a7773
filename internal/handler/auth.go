package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/handler/dto"
)

// DefaultSessionCookieName is used when no cookie name is configured.
const DefaultSessionCookieName = "pub_session"

// SessionCookie configures the cookie that carries the session token for browsers.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler handles login and logout.
type AuthHandler struct {
	auth   *auth.Authenticator
	cookie SessionCookie
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a *auth.Authenticator, cookie SessionCookie, logger *slog.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = DefaultSessionCookieName
	}
	return &AuthHandler{
		auth:   a,
		cookie: cookie,
		logger: logger,
	}
}

// Login authenticates credentials and opens a session.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	login, err := h.auth.Authenticate(r.Context(), auth.SessionFromContext(r.Context()), req.EmailAddress, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    login.Token,
		Path:     "/",
		Expires:  login.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     login.Token,
		ExpiresAt: login.ExpiresAt,
		User:      login.User.ToResponse(),
	})
}

// Logout ends the current session.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.SessionFromContext(r.Context())); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/handler/dto"
	"github.com/pubdocs/pubdocs/internal/service"
)

// UserHandler handles account endpoints.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Register creates an account.
// POST /users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user.ToResponse())
}

// Me returns the authenticated account.
// GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Current(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

// UpdateMe changes the caller's credentials. Every session of the account,
// including the one used for this request, is revoked on success.
// PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateCredentials(r.Context(), auth.SessionFromContext(r.Context()), service.UpdateCredentialsInput{
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}

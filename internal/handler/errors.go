package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/middleware"
	"github.com/pubdocs/pubdocs/internal/service"
)

// handleServiceError maps service and auth errors to HTTP responses.
// Unclassified errors are logged and reported without detail.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	case errors.Is(err, auth.ErrAuthFailure):
		writeError(w, http.StatusUnauthorized, "AUTH_FAILED", "Invalid email address or password")
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "Authentication required")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", verr.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid request")
	// A denied document is indistinguishable from a missing one.
	case errors.Is(err, service.ErrDocumentNotFound), errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email address already registered")
	case errors.Is(err, service.ErrExportRetired):
		writeError(w, http.StatusGone, "GONE", "PDF export is no longer available")
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

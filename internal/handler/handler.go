// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pubdocs/pubdocs/internal/handler/dto"
)

// Version is the API version reported by the service info endpoint.
const Version = "1.0.0"

// ServiceInfo describes how clients authenticate and how documents are
// shared, as reported by GET /.
type ServiceInfo struct {
	AccessPolicy  string
	SessionCookie string
}

// Handler serves the service-level endpoints.
type Handler struct {
	info ServiceInfo
}

// New creates a Handler reporting info.
func New(info ServiceInfo) *Handler {
	if info.SessionCookie == "" {
		info.SessionCookie = DefaultSessionCookieName
	}
	return &Handler{info: info}
}

type serviceInfoResponse struct {
	Service        string   `json:"service"`
	Version        string   `json:"version"`
	DocumentAccess string   `json:"document_access"`
	Auth           []string `json:"auth"`
	SessionCookie  string   `json:"session_cookie"`
}

// Index reports the service version, the document access policy and the
// accepted session credentials.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serviceInfoResponse{
		Service:        "pubdocs",
		Version:        Version,
		DocumentAccess: h.info.AccessPolicy,
		Auth:           []string{"bearer", "cookie"},
		SessionCookie:  h.info.SessionCookie,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent; an encode error can only mean the client went away.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a JSON request body into dst and writes the error
// response itself when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is required")
	default:
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}
	return false
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/handler/dto"
	"github.com/pubdocs/pubdocs/internal/service"
)

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, logger: logger}
}

// List returns the caller's documents in creation order.
// GET /documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentListResponse(docs))
}

// Create stores a new document owned by the caller.
// POST /documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.svc.Create(r.Context(), auth.SessionFromContext(r.Context()), toDraft(req))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	w.Header().Set("Location", "/documents/"+doc.ID)
	writeJSON(w, http.StatusCreated, dto.ToDocumentResponse(doc))
}

// Get returns one document.
// GET /documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentResponse(doc))
}

// Update replaces a document, creating it when the id is unused.
// PUT /documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.DocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.svc.Update(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"), toDraft(req))
	if err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToDocumentResponse(doc))
}

// Delete removes a document. Deleting a missing id succeeds.
// DELETE /documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.logger, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportPDF is kept so old clients get a definite answer.
// GET /documents/{id}/pdf
func (h *DocumentHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.ExportPDF(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id"))
	handleServiceError(h.logger, w, r, err)
}

func toDraft(req dto.DocumentRequest) service.DocumentDraft {
	return service.DocumentDraft{
		ID:      req.ID,
		Owner:   req.Owner,
		Title:   req.Title,
		Width:   req.Width,
		Height:  req.Height,
		Content: req.Content,
	}
}

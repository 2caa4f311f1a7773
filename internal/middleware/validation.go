package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pubdocs/pubdocs/internal/model"
)

// ValidDocumentID rejects requests whose {param} path segment is not a
// well-formed document id, before any handler or store runs.
func ValidDocumentID(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := chi.URLParam(r, param); !model.ValidDocumentID(id) {
				writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "id: malformed document id")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

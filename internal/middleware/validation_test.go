package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestValidDocumentID(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.With(ValidDocumentID("id")).Get("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"ulid", "/documents/01HZX3K8M4Q2W6T9V0B1C5D7EF", http.StatusOK},
		{"slug", "/documents/my_doc-1", http.StatusOK},
		{"too long", "/documents/" + strings.Repeat("a", 65), http.StatusBadRequest},
		{"encoded space", "/documents/a%20b", http.StatusBadRequest},
		{"dot", "/documents/a.pdf", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
			if tt.want == http.StatusBadRequest && !strings.Contains(rec.Body.String(), "VALIDATION_FAILED") {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}

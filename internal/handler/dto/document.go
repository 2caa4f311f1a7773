package dto

import (
	"encoding/json"
	"time"

	"github.com/pubdocs/pubdocs/internal/model"
)

// DocumentRequest represents the request body for creating or replacing a document.
// Owner is accepted for compatibility and always replaced by the caller.
type DocumentRequest struct {
	ID      string          `json:"id,omitempty"`
	Owner   string          `json:"owner,omitempty"`
	Title   string          `json:"title"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Content json.RawMessage `json:"content,omitempty"`
}

// DocumentResponse represents a document in API responses.
type DocumentResponse struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Title     string          `json:"title"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DocumentListResponse represents the caller's documents.
type DocumentListResponse struct {
	Data []DocumentResponse `json:"data"`
}

// ToDocumentResponse converts a Document model to DocumentResponse DTO.
func ToDocumentResponse(doc *model.Document) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Owner:     doc.Owner,
		Title:     doc.Title,
		Width:     doc.Width,
		Height:    doc.Height,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

// ToDocumentListResponse converts documents, keeping their order.
func ToDocumentListResponse(docs []*model.Document) DocumentListResponse {
	out := DocumentListResponse{Data: make([]DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		out.Data = append(out.Data, ToDocumentResponse(d))
	}
	return out
}

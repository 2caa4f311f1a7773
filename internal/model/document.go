package model

import (
	"encoding/json"
	"regexp"
	"time"
)

// MaxDocumentIDLength bounds client-chosen document ids.
const MaxDocumentIDLength = 64

// documentIDPattern allows URL-safe ids: generated ULIDs and client slugs.
var documentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidDocumentID reports whether id can address a document in a URL path.
func ValidDocumentID(id string) bool {
	return len(id) > 0 && len(id) <= MaxDocumentIDLength && documentIDPattern.MatchString(id)
}

// Document is a user-owned publication.
// Content is an opaque JSON payload (shapes, layers) that the core never interprets.
type Document struct {
	ID        string          `json:"id"`
	Owner     string          `json:"owner"`
	Title     string          `json:"title"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsOwnedBy reports whether the document belongs to the given user ID.
func (d *Document) IsOwnedBy(userID string) bool {
	return d.Owner != "" && d.Owner == userID
}

// Clone returns a deep copy so stores never share the content buffer with callers.
func (d *Document) Clone() *Document {
	c := *d
	if d.Content != nil {
		c.Content = append(json.RawMessage(nil), d.Content...)
	}
	return &c
}

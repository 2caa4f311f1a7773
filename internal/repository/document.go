package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pubdocs/pubdocs/internal/model"
)

const documentColumns = `id, owner_id, title, width, height, content, created_at, updated_at`

// SaveDocument inserts a document or overwrites the row with the same ID.
// An overwrite keeps the original created_at and position in creation order.
func (r *Repository) SaveDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	query := `
		INSERT INTO documents (id, owner_id, title, width, height, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET owner_id   = EXCLUDED.owner_id,
		    title      = EXCLUDED.title,
		    width      = EXCLUDED.width,
		    height     = EXCLUDED.height,
		    content    = EXCLUDED.content,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + documentColumns

	saved, err := scanDocument(r.pool.QueryRow(ctx, query,
		doc.ID,
		doc.Owner,
		doc.Title,
		doc.Width,
		doc.Height,
		nullableJSON(doc.Content),
		doc.CreatedAt,
		doc.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	return saved, nil
}

// FindDocumentByID retrieves a document by its ID.
func (r *Repository) FindDocumentByID(ctx context.Context, id string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document by ID: %w", err)
	}

	return doc, nil
}

// FindAllDocumentsByOwner retrieves an owner's documents in creation order.
func (r *Repository) FindAllDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocumentByID removes a document. Deleting a missing ID is not an error.
func (r *Repository) DeleteDocumentByID(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// scanDocument scans a row into a Document model. pgx.Rows satisfies pgx.Row.
func scanDocument(row pgx.Row) (*model.Document, error) {
	var doc model.Document
	var content []byte
	err := row.Scan(
		&doc.ID,
		&doc.Owner,
		&doc.Title,
		&doc.Width,
		&doc.Height,
		&content,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		doc.Content = content
	}
	return &doc, nil
}

// nullableJSON maps an empty payload to SQL NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

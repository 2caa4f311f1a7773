package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/metrics"
	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/repository"
)

const maxTitleLength = 200

// AccessPolicy selects how by-id document operations are authorized.
type AccessPolicy string

const (
	// PolicyLegacy lets any authenticated caller read, overwrite or delete a
	// document by id. The owner-scoped list path is always filtered.
	PolicyLegacy AccessPolicy = "legacy"
	// PolicyOwner requires an existing document to belong to the caller.
	PolicyOwner AccessPolicy = "owner"
)

// ParseAccessPolicy converts a config value to an AccessPolicy.
func ParseAccessPolicy(s string) (AccessPolicy, error) {
	switch p := AccessPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyLegacy:
		return PolicyLegacy, nil
	case PolicyOwner:
		return PolicyOwner, nil
	default:
		return "", fmt.Errorf("unknown document access policy %q", s)
	}
}

// DocumentStore is the persistence collaborator for documents.
// FindDocumentByID reports a missing id as repository.ErrDocumentNotFound.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *model.Document) (*model.Document, error)
	FindDocumentByID(ctx context.Context, id string) (*model.Document, error)
	FindAllDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error)
	DeleteDocumentByID(ctx context.Context, id string) error
}

// DocumentDraft is client input for create and update.
// Owner is accepted so it can be ignored: the stored owner is always the caller.
type DocumentDraft struct {
	ID      string
	Owner   string
	Title   string
	Width   float64
	Height  float64
	Content json.RawMessage
}

// operation names the document action being authorized.
type operation string

const (
	opGet    operation = "get"
	opUpdate operation = "update"
	opDelete operation = "delete"
)

// DocumentService enforces document ownership against the request's Session.
type DocumentService struct {
	store   DocumentStore
	policy  AccessPolicy
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store DocumentStore, policy AccessPolicy, logger *slog.Logger, recorder metrics.Recorder) *DocumentService {
	if policy == "" {
		policy = PolicyLegacy
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DocumentService{
		store:   store,
		policy:  policy,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// Policy returns the active access policy.
func (s *DocumentService) Policy() AccessPolicy {
	return s.policy
}

// List returns the caller's documents in creation order.
func (s *DocumentService) List(ctx context.Context, sess *auth.Session) ([]*model.Document, error) {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.FindAllDocumentsByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Create stores a new document owned by the caller. A missing id is assigned.
func (s *DocumentService) Create(ctx context.Context, sess *auth.Session, draft DocumentDraft) (*model.Document, error) {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(draft.ID)
	if id == "" {
		id = generateULID()
	} else {
		// A caller-chosen id may already exist; treat that as an overwrite.
		existing, err := s.findExisting(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.authorize(opUpdate, identity, existing); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	doc := &model.Document{
		ID:        id,
		Owner:     identity.UserID,
		Title:     draft.Title,
		Width:     draft.Width,
		Height:    draft.Height,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.store.SaveDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.metrics.IncDocumentCreated()
	s.logger.Debug("document created",
		slog.String("document_id", saved.ID),
		slog.String("user_id", identity.UserID),
	)
	return saved, nil
}

// Get returns a document by id.
func (s *DocumentService) Get(ctx context.Context, sess *auth.Session, id string) (*model.Document, error) {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return nil, err
	}

	doc, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if err := s.authorize(opGet, identity, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update writes draft at id with the caller as owner. Under the legacy
// policy this replaces whatever document held the id before.
func (s *DocumentService) Update(ctx context.Context, sess *auth.Session, id string, draft DocumentDraft) (*model.Document, error) {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	draft.ID = id
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(opUpdate, identity, existing); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := &model.Document{
		ID:        id,
		Owner:     identity.UserID,
		Title:     draft.Title,
		Width:     draft.Width,
		Height:    draft.Height,
		Content:   draft.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		doc.CreatedAt = existing.CreatedAt
	}

	saved, err := s.store.SaveDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if existing != nil && !existing.IsOwnedBy(identity.UserID) {
		s.logger.Warn("document ownership reassigned by update",
			slog.String("document_id", id),
			slog.String("previous_owner", existing.Owner),
			slog.String("user_id", identity.UserID),
		)
	}
	s.metrics.IncDocumentUpdated()
	return saved, nil
}

// Delete removes a document by id. Deleting a missing document succeeds.
func (s *DocumentService) Delete(ctx context.Context, sess *auth.Session, id string) error {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return err
	}

	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(opDelete, identity, existing); err != nil {
		return err
	}

	if err := s.store.DeleteDocumentByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if existing != nil {
		s.metrics.IncDocumentDeleted()
	}
	return nil
}

// ExportPDF requires an identity like every other operation and then always
// fails with ErrExportRetired. The store is never consulted.
func (s *DocumentService) ExportPDF(_ context.Context, sess *auth.Session, id string) ([]byte, error) {
	identity, err := s.requireIdentity(sess)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("pdf export requested",
		slog.String("document_id", id),
		slog.String("user_id", identity.UserID),
	)
	return nil, ErrExportRetired
}

// requireIdentity rejects unauthenticated scopes before any store access.
func (s *DocumentService) requireIdentity(sess *auth.Session) (*model.Identity, error) {
	identity, err := currentIdentity(sess)
	if err != nil {
		s.metrics.IncAccessDenied(metrics.DeniedUnauthenticated)
		return nil, err
	}
	return identity, nil
}

// authorize is the single check point for by-id operations on an existing
// document. existing is nil when the id is not stored.
func (s *DocumentService) authorize(op operation, identity *model.Identity, existing *model.Document) error {
	if existing == nil || s.policy == PolicyLegacy {
		return nil
	}
	if existing.IsOwnedBy(identity.UserID) {
		return nil
	}

	s.metrics.IncAccessDenied(metrics.DeniedNotOwner)
	s.logger.Warn("document access denied",
		slog.String("operation", string(op)),
		slog.String("document_id", existing.ID),
		slog.String("user_id", identity.UserID),
	)
	return ErrAccessDenied
}

// findExisting loads a document, mapping a miss to (nil, nil).
func (s *DocumentService) findExisting(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.store.FindDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "is required")
	}
	if !model.ValidDocumentID(id) {
		return invalid("id", fmt.Sprintf("must be 1-%d letters, digits, '-' or '_'", model.MaxDocumentIDLength))
	}
	return nil
}

func validateDraft(d DocumentDraft) error {
	if d.ID != "" {
		if err := validateID(d.ID); err != nil {
			return err
		}
	}
	if strings.TrimSpace(d.Title) == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(d.Title) > maxTitleLength {
		return invalid("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if !validDimension(d.Width) {
		return invalid("width", "must be a non-negative number")
	}
	if !validDimension(d.Height) {
		return invalid("height", "must be a non-negative number")
	}
	if len(d.Content) > 0 && !json.Valid(d.Content) {
		return invalid("content", "must be valid JSON")
	}
	return nil
}

func validDimension(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

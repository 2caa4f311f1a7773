package repository

import (
	"context"
	"sync"

	"github.com/pubdocs/pubdocs/internal/model"
)

// Memory is an in-process credential and document store with the same
// contract as Repository. Stored values are copied on the way in and out.
type Memory struct {
	mu sync.RWMutex

	users   map[string]*model.User
	byEmail map[string]string

	docs  map[string]*model.Document
	order []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		docs:    make(map[string]*model.Document),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// FindOneByEmailAddress retrieves a user by their (normalized) email address.
func (m *Memory) FindOneByEmailAddress(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// FindUserByID retrieves a user by their ID.
func (m *Memory) FindUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// SaveUser inserts a user or overwrites the one with the same ID.
func (m *Memory) SaveUser(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if holder, ok := m.byEmail[user.EmailAddress]; ok && holder != user.ID {
		return nil, ErrEmailExists
	}

	stored := *user
	if prev, ok := m.users[user.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
		if prev.EmailAddress != user.EmailAddress {
			delete(m.byEmail, prev.EmailAddress)
		}
	}
	m.users[stored.ID] = &stored
	m.byEmail[stored.EmailAddress] = stored.ID

	out := stored
	return &out, nil
}

// SaveDocument inserts a document or overwrites the one with the same ID.
// An overwrite keeps the original CreatedAt and position in creation order.
func (m *Memory) SaveDocument(_ context.Context, doc *model.Document) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := doc.Clone()
	if prev, ok := m.docs[doc.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		m.order = append(m.order, doc.ID)
	}
	m.docs[stored.ID] = stored

	return stored.Clone(), nil
}

// FindDocumentByID retrieves a document by its ID.
func (m *Memory) FindDocumentByID(_ context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// FindAllDocumentsByOwner retrieves an owner's documents in creation order.
func (m *Memory) FindAllDocumentsByOwner(_ context.Context, ownerID string) ([]*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*model.Document, 0)
	for _, id := range m.order {
		if doc := m.docs[id]; doc.Owner == ownerID {
			docs = append(docs, doc.Clone())
		}
	}
	return docs, nil
}

// DeleteDocumentByID removes a document. Deleting a missing ID is not an error.
func (m *Memory) DeleteDocumentByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return nil
	}
	delete(m.docs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

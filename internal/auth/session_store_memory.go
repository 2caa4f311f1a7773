package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pubdocs/pubdocs/internal/model"
)

// MemorySessionStore is an in-process SessionStore for tests and
// single-instance development runs.
type MemorySessionStore struct {
	mu     sync.Mutex
	byID   map[string]*model.SessionRecord
	byUser map[string]map[string]struct{}
	now    func() time.Time
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		byID:   make(map[string]*model.SessionRecord),
		byUser: make(map[string]map[string]struct{}),
		now:    time.Now,
	}
}

// SaveSession stores a session record.
func (m *MemorySessionStore) SaveSession(_ context.Context, rec *model.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *rec
	m.byID[rec.ID] = &c
	if m.byUser[rec.UserID] == nil {
		m.byUser[rec.UserID] = make(map[string]struct{})
	}
	m.byUser[rec.UserID][rec.ID] = struct{}{}
	return nil
}

// GetSession returns the record or nil when unknown or expired.
func (m *MemorySessionStore) GetSession(_ context.Context, sessionID string) (*model.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[sessionID]
	if !ok {
		return nil, nil
	}
	if rec.IsExpired(m.now()) {
		m.deleteLocked(rec)
		return nil, nil
	}
	c := *rec
	return &c, nil
}

// DeleteSession removes a session. Unknown IDs are ignored.
func (m *MemorySessionStore) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.byID[sessionID]; ok {
		m.deleteLocked(rec)
	}
	return nil
}

// DeleteUserSessions removes every session of a user.
func (m *MemorySessionStore) DeleteUserSessions(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.byUser[userID] {
		delete(m.byID, id)
	}
	delete(m.byUser, userID)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *MemorySessionStore) deleteLocked(rec *model.SessionRecord) {
	delete(m.byID, rec.ID)
	if ids := m.byUser[rec.UserID]; ids != nil {
		delete(ids, rec.ID)
		if len(ids) == 0 {
			delete(m.byUser, rec.UserID)
		}
	}
}

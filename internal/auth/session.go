package auth

import (
	"context"
	"sync"

	"github.com/pubdocs/pubdocs/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the request's Session.
	sessionContextKey contextKey = "session"
)

// Session holds at most one authenticated identity for a single request scope.
//
// Every request gets its own Session from NewScope; there is no process-wide
// identity holder. Only the Authenticator and the scope release function
// write to it.
type Session struct {
	mu       sync.RWMutex
	identity *model.Identity
}

// Current returns a copy of the bound identity, or false when the scope is
// unauthenticated. A nil Session is unauthenticated.
func (s *Session) Current() (*model.Identity, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil, false
	}
	id := *s.identity
	return &id, true
}

// IsAuthenticated reports whether an identity is bound.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Session) bind(id *model.Identity) {
	c := *id
	s.mu.Lock()
	s.identity = &c
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

// NewScope opens a request scope: it attaches a fresh, unauthenticated
// Session to ctx. The returned release func is the scope-teardown hook and
// must be called when the request ends.
func NewScope(ctx context.Context) (context.Context, *Session, func()) {
	sess := &Session{}
	return context.WithValue(ctx, sessionContextKey, sess), sess, sess.clear
}

// SessionFromContext retrieves the request's Session.
// Returns nil if no scope was opened.
func SessionFromContext(ctx context.Context) *Session {
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return sess
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id, ok := SessionFromContext(ctx).Current()
	if !ok {
		return ""
	}
	return id.UserID
}

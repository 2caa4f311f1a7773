package model

import "time"

// Identity is the authenticated user bound to a request.
type Identity struct {
	UserID       string
	EmailAddress string
	SessionID    string
}

// SessionRecord is the persisted side of a login session.
// Removing it revokes every token issued for the session.
type SessionRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EmailAddress string    `json:"email_address"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *SessionRecord) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Identity returns the identity the session binds to.
func (s *SessionRecord) Identity() *Identity {
	return &Identity{
		UserID:       s.UserID,
		EmailAddress: s.EmailAddress,
		SessionID:    s.ID,
	}
}

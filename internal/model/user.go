// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User is an account that can authenticate and own documents.
// The email address is the login key; ID is the stable owner reference.
type User struct {
	ID           string    `json:"id"`
	EmailAddress string    `json:"email_address"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmailAddress trims surrounding whitespace and lowercases the address
// so lookups are case-insensitive.
func NormalizeEmailAddress(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserResponse is the outward representation of a user.
type UserResponse struct {
	ID           string    `json:"id"`
	EmailAddress string    `json:"email_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToResponse converts a User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		EmailAddress: u.EmailAddress,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

package dto

import (
	"time"

	"github.com/pubdocs/pubdocs/internal/model"
)

// CredentialsRequest is the body of registration and login requests.
type CredentialsRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// UpdateCredentialsRequest changes the caller's email address and/or password.
type UpdateCredentialsRequest struct {
	EmailAddress *string `json:"email_address,omitempty"`
	Password     *string `json:"password,omitempty"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/metrics"
	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/repository"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxEmailLength    = 254
)

// UserStore is the persistence collaborator for user accounts.
type UserStore interface {
	FindOneByEmailAddress(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) (*model.User, error)
}

// SessionRevoker ends every login session of the identity bound to a Session.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, sess *auth.Session) error
}

// UserService handles account registration and credential updates.
type UserService struct {
	store    UserStore
	hasher   *auth.Hasher
	sessions SessionRevoker
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, hasher *auth.Hasher, sessions SessionRevoker, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	EmailAddress string
	Password     string
}

// Register creates an account. The password is stored only as a hash.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email, err := validateEmail(input.EmailAddress)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.store.SaveUser(ctx, &model.User{
		ID:           generateULID(),
		EmailAddress: email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Current returns the account bound to sess.
func (s *UserService) Current(ctx context.Context, sess *auth.Session) (*model.User, error) {
	identity, err := currentIdentity(sess)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, identity.UserID)
}

// UpdateCredentialsInput defines a credential change. Nil fields are unchanged.
type UpdateCredentialsInput struct {
	EmailAddress *string
	Password     *string
}

// UpdateCredentials changes the caller's email address and/or password and
// then revokes every login session of the account, including the current one.
func (s *UserService) UpdateCredentials(ctx context.Context, sess *auth.Session, input UpdateCredentialsInput) (*model.User, error) {
	identity, err := currentIdentity(sess)
	if err != nil {
		return nil, err
	}
	if input.EmailAddress == nil && input.Password == nil {
		return nil, invalid("body", "email_address or password is required")
	}

	user, err := s.findUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	if input.EmailAddress != nil {
		email, err := validateEmail(*input.EmailAddress)
		if err != nil {
			return nil, err
		}
		user.EmailAddress = email
	}
	if input.Password != nil {
		if err := validatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now().UTC()

	saved, err := s.store.SaveUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// The new credentials are already stored; a failed revoke leaves old
	// sessions valid until they expire, so it is logged rather than returned.
	if err := s.sessions.RevokeAll(ctx, sess); err != nil {
		s.logger.Error("failed to revoke sessions after credential update",
			slog.String("user_id", saved.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("credentials updated",
		slog.String("user_id", saved.ID),
		slog.Bool("email_changed", input.EmailAddress != nil),
		slog.Bool("password_changed", input.Password != nil),
	)
	return saved, nil
}

func (s *UserService) findUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// validateEmail normalizes an address and checks it is a bare addr-spec.
func validateEmail(raw string) (string, error) {
	email := model.NormalizeEmailAddress(raw)
	if email == "" {
		return "", invalid("email_address", "is required")
	}
	if len(email) > maxEmailLength {
		return "", invalid("email_address", "is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalid("email_address", "is not a valid email address")
	}
	return email, nil
}

func validatePassword(pw string) error {
	switch {
	case len(pw) < minPasswordLength:
		return invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	case len(pw) > maxPasswordLength:
		return invalid("password", fmt.Sprintf("must be at most %d characters", maxPasswordLength))
	}
	return nil
}

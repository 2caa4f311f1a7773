package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pubdocs/pubdocs/internal/metrics"
	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/repository"
)

// CredentialStore looks up users by login key.
// A missing user is reported as repository.ErrUserNotFound.
type CredentialStore interface {
	FindOneByEmailAddress(ctx context.Context, email string) (*model.User, error)
}

// SessionStore persists login sessions across requests.
// GetSession returns (nil, nil) for an unknown or expired session.
type SessionStore interface {
	SaveSession(ctx context.Context, rec *model.SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (*model.SessionRecord, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteUserSessions(ctx context.Context, userID string) error
}

// Config holds the Authenticator's collaborators and policy.
type Config struct {
	Users    CredentialStore
	Sessions SessionStore
	Hasher   *Hasher
	Tokens   *TokenIssuer
	Logger   *slog.Logger
	Metrics  metrics.Recorder

	// SessionTTL is the lifetime of a login session.
	SessionTTL time.Duration
	// MinDuration is the minimum time Authenticate takes regardless of outcome.
	MinDuration time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Login is the result of a successful authentication.
type Login struct {
	Identity  *model.Identity
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Authenticator validates credentials and binds identities to request
// scopes. It is the only component that writes to a Session.
type Authenticator struct {
	users       CredentialStore
	sessions    SessionStore
	hasher      *Hasher
	tokens      *TokenIssuer
	logger      *slog.Logger
	metrics     metrics.Recorder
	sessionTTL  time.Duration
	minDuration time.Duration
	now         func() time.Time
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(cfg Config) *Authenticator {
	a := &Authenticator{
		users:       cfg.Users,
		sessions:    cfg.Sessions,
		hasher:      cfg.Hasher,
		tokens:      cfg.Tokens,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		sessionTTL:  cfg.SessionTTL,
		minDuration: cfg.MinDuration,
		now:         cfg.Now,
	}
	if a.hasher == nil {
		a.hasher = NewHasher(DefaultParams())
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.metrics == nil {
		a.metrics = metrics.NewNoop()
	}
	if a.sessionTTL <= 0 {
		a.sessionTTL = 24 * time.Hour
	}
	if a.now == nil {
		a.now = time.Now
	}
	// Computed up front so the first unknown-email login costs the same as later ones.
	a.hasher.DummyHash()
	return a
}

// Authenticate checks email and password and, on success, opens a login
// session and binds its identity to sess.
//
// An unknown email and a wrong password take the same path: the password is
// always verified against a hash and both fail with ErrAuthFailure.
func (a *Authenticator) Authenticate(ctx context.Context, sess *Session, email, password string) (*Login, error) {
	start := time.Now()

	// Ensure consistent timing regardless of outcome
	defer func() {
		elapsed := time.Since(start)
		a.metrics.ObserveLoginDuration(elapsed)
		if elapsed < a.minDuration {
			time.Sleep(a.minDuration - elapsed)
		}
	}()

	email = model.NormalizeEmailAddress(email)

	user, err := a.users.FindOneByEmailAddress(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		a.metrics.IncLoginAttempt(metrics.ResultError)
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}

	hash := a.hasher.DummyHash()
	if user != nil {
		hash = user.PasswordHash
	}
	matched := a.hasher.Verify(password, hash)

	if user == nil || !matched {
		reason := "wrong_password"
		if user == nil {
			reason = "unknown_email"
		}
		a.logger.Warn("authentication failed",
			slog.String("reason", reason),
			slog.String("email_hash", QuickHash(email)),
		)
		a.metrics.IncLoginAttempt(metrics.ResultFailure)
		return nil, ErrAuthFailure
	}

	now := a.now().UTC()
	rec := &model.SessionRecord{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		EmailAddress: user.EmailAddress,
		CreatedAt:    now,
		ExpiresAt:    now.Add(a.sessionTTL),
	}

	if err := a.sessions.SaveSession(ctx, rec); err != nil {
		a.metrics.IncLoginAttempt(metrics.ResultError)
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := a.tokens.Issue(rec)
	if err != nil {
		_ = a.sessions.DeleteSession(ctx, rec.ID)
		a.metrics.IncLoginAttempt(metrics.ResultError)
		return nil, err
	}

	identity := rec.Identity()
	sess.bind(identity)

	a.logger.Info("authentication successful",
		slog.String("user_id", user.ID),
		slog.String("session_id", rec.ID),
	)
	a.metrics.IncLoginAttempt(metrics.ResultSuccess)

	return &Login{
		Identity:  identity,
		User:      user,
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Resume binds the identity of an existing login session to sess.
// The token must verify and its session must still be live in the store.
func (a *Authenticator) Resume(ctx context.Context, sess *Session, token string) error {
	now := a.now().UTC()

	claims, err := a.tokens.Parse(token, now)
	if err != nil {
		a.metrics.IncSessionResume(metrics.ResultFailure)
		return err
	}

	rec, err := a.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		a.metrics.IncSessionResume(metrics.ResultError)
		return fmt.Errorf("load session: %w", err)
	}
	if rec == nil || rec.UserID != claims.Subject || rec.IsExpired(now) {
		a.metrics.IncSessionResume(metrics.ResultFailure)
		return ErrInvalidToken
	}

	sess.bind(rec.Identity())
	a.metrics.IncSessionResume(metrics.ResultSuccess)
	return nil
}

// Logout ends the login session bound to sess. The scope is unauthenticated
// afterwards even if revoking the stored session fails.
func (a *Authenticator) Logout(ctx context.Context, sess *Session) error {
	identity, ok := sess.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	sess.clear()

	if err := a.sessions.DeleteSession(ctx, identity.SessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	a.logger.Info("logout",
		slog.String("user_id", identity.UserID),
		slog.String("session_id", identity.SessionID),
	)
	a.metrics.IncLogout()
	return nil
}

// RevokeAll ends every login session of the identity bound to sess,
// including the current one.
func (a *Authenticator) RevokeAll(ctx context.Context, sess *Session) error {
	identity, ok := sess.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	sess.clear()

	if err := a.sessions.DeleteUserSessions(ctx, identity.UserID); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}

	a.logger.Info("all sessions revoked", slog.String("user_id", identity.UserID))
	return nil
}

// SessionTTL returns the lifetime of new login sessions.
func (a *Authenticator) SessionTTL() time.Duration {
	return a.sessionTTL
}

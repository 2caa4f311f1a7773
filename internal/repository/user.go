package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pubdocs/pubdocs/internal/model"
)

// FindOneByEmailAddress retrieves a user by their (normalized) email address.
func (r *Repository) FindOneByEmailAddress(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email_address, password_hash, created_at, updated_at
		FROM users
		WHERE email_address = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// FindUserByID retrieves a user by their ID.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, email_address, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// SaveUser inserts a user or overwrites the row with the same ID.
// The stored row is returned.
func (r *Repository) SaveUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, email_address, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email_address = EXCLUDED.email_address,
		    password_hash = EXCLUDED.password_hash,
		    updated_at    = EXCLUDED.updated_at
		RETURNING id, email_address, password_hash, created_at, updated_at
	`

	saved, err := scanUser(r.pool.QueryRow(ctx, query,
		user.ID,
		user.EmailAddress,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

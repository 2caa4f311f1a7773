package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/repository"
	"github.com/pubdocs/pubdocs/internal/service"
)

type output struct {
	UserID       string `json:"user_id"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password,omitempty"`
	Created      bool   `json:"created"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@pubdocs.local", "Account email address")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_PASSWORD"), "Account password (generated when empty)")
		reset       = flag.Bool("reset-password", false, "Replace the password of an existing account")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	generated := false
	if *password == "" {
		p, err := generatePassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
		*password = p
		generated = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hasher := auth.NewHasher(auth.DefaultParams())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := service.NewUserService(repo, hasher, nil, logger, nil)

	out, err := ensureUser(ctx, repo, users, hasher, *email, *password, *reset)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if generated && (out.Created || *reset) {
		out.Password = *password
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.UserID)
		if out.Password != "" {
			fmt.Println(out.Password)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureUser registers the account, or with reset set replaces the password
// of an existing one.
func ensureUser(ctx context.Context, repo *repository.Repository, users *service.UserService, hasher *auth.Hasher, email, password string, reset bool) (*output, error) {
	user, err := users.Register(ctx, service.RegisterInput{EmailAddress: email, Password: password})
	if err == nil {
		return &output{UserID: user.ID, EmailAddress: user.EmailAddress, Created: true}, nil
	}
	if !errors.Is(err, service.ErrEmailTaken) {
		return nil, fmt.Errorf("register user: %w", err)
	}

	existing, err := repo.FindOneByEmailAddress(ctx, model.NormalizeEmailAddress(email))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !reset {
		return &output{UserID: existing.ID, EmailAddress: existing.EmailAddress}, nil
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	existing.PasswordHash = hash
	existing.UpdatedAt = time.Now().UTC()
	if _, err := repo.SaveUser(ctx, existing); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return &output{UserID: existing.ID, EmailAddress: existing.EmailAddress}, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/metrics"
	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/repository"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	store   *countingStore
	auth    *auth.Authenticator
	docs    *DocumentService
	users   *UserService
	metrics *metrics.InMemoryRecorder
}

func newTestEnv(t *testing.T, policy AccessPolicy) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()
	store := &countingStore{Memory: repository.NewMemory()}
	hasher := auth.NewHasher(auth.Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})

	tokens, err := auth.NewTokenIssuer(testSecret, "pubdocs-test")
	require.NoError(t, err)

	authenticator := auth.NewAuthenticator(auth.Config{
		Users:    store,
		Sessions: auth.NewMemorySessionStore(),
		Hasher:   hasher,
		Tokens:   tokens,
		Logger:   logger,
		Metrics:  recorder,
	})

	return &testEnv{
		store:   store,
		auth:    authenticator,
		docs:    NewDocumentService(store, policy, logger, recorder),
		users:   NewUserService(store, hasher, authenticator, logger, recorder),
		metrics: recorder,
	}
}

// signUp registers an account and returns a session authenticated as it.
func (e *testEnv) signUp(t *testing.T, email, password string) (*model.User, *auth.Session) {
	t.Helper()
	ctx := context.Background()

	user, err := e.users.Register(ctx, RegisterInput{EmailAddress: email, Password: password})
	require.NoError(t, err)

	return user, e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) *auth.Session {
	t.Helper()
	_, sess, release := auth.NewScope(context.Background())
	t.Cleanup(release)

	_, err := e.auth.Authenticate(context.Background(), sess, email, password)
	require.NoError(t, err)
	return sess
}

func anonymous(t *testing.T) *auth.Session {
	t.Helper()
	_, sess, release := auth.NewScope(context.Background())
	t.Cleanup(release)
	return sess
}

// countingStore records how many document store calls were made.
type countingStore struct {
	*repository.Memory
	docCalls atomic.Int64
}

func (c *countingStore) SaveDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	c.docCalls.Add(1)
	return c.Memory.SaveDocument(ctx, doc)
}

func (c *countingStore) FindDocumentByID(ctx context.Context, id string) (*model.Document, error) {
	c.docCalls.Add(1)
	return c.Memory.FindDocumentByID(ctx, id)
}

func (c *countingStore) FindAllDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	c.docCalls.Add(1)
	return c.Memory.FindAllDocumentsByOwner(ctx, ownerID)
}

func (c *countingStore) DeleteDocumentByID(ctx context.Context, id string) error {
	c.docCalls.Add(1)
	return c.Memory.DeleteDocumentByID(ctx, id)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/testutil"
)

// store is the surface shared by Repository and Memory.
type store interface {
	FindOneByEmailAddress(ctx context.Context, email string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) (*model.User, error)
	SaveDocument(ctx context.Context, doc *model.Document) (*model.Document, error)
	FindDocumentByID(ctx context.Context, id string) (*model.Document, error)
	FindAllDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error)
	DeleteDocumentByID(ctx context.Context, id string) error
}

var (
	_ store = (*Repository)(nil)
	_ store = (*Memory)(nil)
)

// runStoreContract exercises the behavior both store implementations promise.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) store) {
	t.Run("UserRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		user := testutil.NewTestUser(t, "Alice@Example.com")
		saved, err := s.SaveUser(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, user.ID, saved.ID)

		byEmail, err := s.FindOneByEmailAddress(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

		byID, err := s.FindUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.EmailAddress)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.FindOneByEmailAddress(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = s.FindUserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.SaveUser(ctx, testutil.NewTestUser(t, "dup@example.com"))
		require.NoError(t, err)

		_, err = s.SaveUser(ctx, testutil.NewTestUser(t, "dup@example.com"))
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("UserEmailChange", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		user := testutil.NewTestUser(t, "old@example.com")
		_, err := s.SaveUser(ctx, user)
		require.NoError(t, err)

		user.EmailAddress = "new@example.com"
		_, err = s.SaveUser(ctx, user)
		require.NoError(t, err)

		_, err = s.FindOneByEmailAddress(ctx, "old@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)

		found, err := s.FindOneByEmailAddress(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("DocumentRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := seedUser(t, s, "owner")

		doc := testutil.NewTestDocument(t, owner.ID, "Poster")
		doc.Content = json.RawMessage(`{"layers":[1,2,3]}`)
		_, err := s.SaveDocument(ctx, doc)
		require.NoError(t, err)

		found, err := s.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, found.Owner)
		assert.Equal(t, "Poster", found.Title)
		assert.Equal(t, 210.0, found.Width)
		assert.Equal(t, 297.0, found.Height)
		assert.JSONEq(t, `{"layers":[1,2,3]}`, string(found.Content))
	})

	t.Run("DocumentWithoutContent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := seedUser(t, s, "owner")

		doc := testutil.NewTestDocument(t, owner.ID, "Blank")
		doc.Content = nil
		_, err := s.SaveDocument(ctx, doc)
		require.NoError(t, err)

		found, err := s.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Empty(t, found.Content)
	})

	t.Run("DocumentNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindDocumentByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("SaveOverwritesByID", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")

		doc := testutil.NewTestDocument(t, alice.ID, "Original")
		first, err := s.SaveDocument(ctx, doc)
		require.NoError(t, err)

		overwrite := doc.Clone()
		overwrite.Owner = bob.ID
		overwrite.Title = "Replaced"
		overwrite.CreatedAt = first.CreatedAt.Add(time.Hour)
		overwrite.UpdatedAt = first.UpdatedAt.Add(time.Hour)
		_, err = s.SaveDocument(ctx, overwrite)
		require.NoError(t, err)

		found, err := s.FindDocumentByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.Owner)
		assert.Equal(t, "Replaced", found.Title)
		assert.True(t, found.CreatedAt.Equal(first.CreatedAt), "created_at must survive an overwrite")

		aliceDocs, err := s.FindAllDocumentsByOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, aliceDocs)

		bobDocs, err := s.FindAllDocumentsByOwner(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobDocs, 1)
		assert.Equal(t, doc.ID, bobDocs[0].ID)
	})

	t.Run("FindAllByOwnerFiltersAndOrders", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		alice := seedUser(t, s, "alice")
		bob := seedUser(t, s, "bob")

		var want []string
		for i := 0; i < 3; i++ {
			doc := testutil.NewTestDocument(t, alice.ID, fmt.Sprintf("alice-%d", i))
			doc.ID = fmt.Sprintf("%s-%d", doc.ID, i)
			_, err := s.SaveDocument(ctx, doc)
			require.NoError(t, err)
			want = append(want, doc.ID)

			other := testutil.NewTestDocument(t, bob.ID, "bob")
			other.ID = fmt.Sprintf("%s-bob-%d", other.ID, i)
			_, err = s.SaveDocument(ctx, other)
			require.NoError(t, err)
		}

		docs, err := s.FindAllDocumentsByOwner(ctx, alice.ID)
		require.NoError(t, err)
		got := make([]string, 0, len(docs))
		for _, d := range docs {
			assert.Equal(t, alice.ID, d.Owner)
			got = append(got, d.ID)
		}
		assert.Equal(t, want, got)
	})

	t.Run("FindAllByOwnerEmpty", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.FindAllDocumentsByOwner(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := seedUser(t, s, "owner")

		doc := testutil.NewTestDocument(t, owner.ID, "Temp")
		_, err := s.SaveDocument(ctx, doc)
		require.NoError(t, err)

		require.NoError(t, s.DeleteDocumentByID(ctx, doc.ID))
		require.NoError(t, s.DeleteDocumentByID(ctx, doc.ID))

		_, err = s.FindDocumentByID(ctx, doc.ID)
		assert.True(t, errors.Is(err, ErrDocumentNotFound))
	})

	t.Run("ConcurrentSavesSameID", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := seedUser(t, s, "owner")
		base := testutil.NewTestDocument(t, owner.ID, "race")

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				doc := base.Clone()
				doc.Title = fmt.Sprintf("writer-%d", i)
				_, err := s.SaveDocument(ctx, doc)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		docs, err := s.FindAllDocumentsByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

func seedUser(t *testing.T, s store, prefix string) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail(prefix))
	user.ID = testutil.UniqueID(prefix)
	saved, err := s.SaveUser(context.Background(), user)
	require.NoError(t, err)
	return saved
}

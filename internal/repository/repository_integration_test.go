//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/pubdocs/pubdocs/internal/testutil"
)

func TestIntegrationRepositoryContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) store {
		ctx, pool := newMigrationTestEnv(t)
		repo := NewWithPool(pool)
		if err := repo.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
		return repo
	})
}

func TestIntegrationRepository_ContentPassthrough(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)
	repo := NewWithPool(pool)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("content"))
	if _, err := repo.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	// The JSON column keeps the payload text as written.
	raw := `{"z":1, "a":[true,null]}`
	doc := testutil.NewTestDocument(t, user.ID, "Raw")
	doc.Content = []byte(raw)
	if _, err := repo.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	found, err := repo.FindDocumentByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("FindDocumentByID failed: %v", err)
	}
	if string(found.Content) != raw {
		t.Errorf("Content = %s, want %s", found.Content, raw)
	}
}

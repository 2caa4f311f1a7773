//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pubdocs/pubdocs/internal/model"
	"github.com/pubdocs/pubdocs/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	ctx, c := openNamespace(t, "pubdocs-test")
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

func openNamespace(t *testing.T, namespace string) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := Open(ctx, Options{URL: redisURL, Namespace: namespace, PoolSize: 4})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return ctx, c
}

func newRecord(id, userID string) *model.SessionRecord {
	now := time.Now().UTC()
	return &model.SessionRecord{
		ID:           id,
		UserID:       userID,
		EmailAddress: userID + "@example.com",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestIntegrationSession_SaveGetDelete(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	rec := newRecord("s1", "u1")
	if err := c.SaveSession(ctx, rec); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := c.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.UserID != "u1" {
		t.Fatalf("GetSession = %+v, want user u1", got)
	}

	if err := c.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	got, err = c.GetSession(ctx, "s1")
	if err != nil || got != nil {
		t.Errorf("GetSession after delete = %+v, %v; want nil, nil", got, err)
	}

	// Deleting again is harmless.
	if err := c.DeleteSession(ctx, "s1"); err != nil {
		t.Errorf("second DeleteSession failed: %v", err)
	}
}

func TestIntegrationSession_DeleteUserSessions(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for _, rec := range []*model.SessionRecord{
		newRecord("a1", "alice"),
		newRecord("a2", "alice"),
		newRecord("b1", "bob"),
	} {
		if err := c.SaveSession(ctx, rec); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}

	if err := c.DeleteUserSessions(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUserSessions failed: %v", err)
	}

	for _, id := range []string{"a1", "a2"} {
		if got, _ := c.GetSession(ctx, id); got != nil {
			t.Errorf("session %s should be revoked", id)
		}
	}
	if got, _ := c.GetSession(ctx, "b1"); got == nil {
		t.Error("other users' sessions must survive")
	}
}

func TestIntegrationSession_RejectsExpired(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	rec := newRecord("old", "u1")
	rec.ExpiresAt = time.Now().Add(-time.Second)
	if err := c.SaveSession(ctx, rec); err == nil {
		t.Error("SaveSession should reject an expired record")
	}
}

func TestIntegrationRateLimit_LoginBurst(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for i := 0; i < 3; i++ {
		res, err := c.CheckLoginRateLimit(ctx, "203.0.113.7", 1, 3)
		if err != nil {
			t.Fatalf("CheckLoginRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	res, err := c.CheckLoginRateLimit(ctx, "203.0.113.7", 1, 3)
	if err != nil {
		t.Fatalf("CheckLoginRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("attempt beyond burst should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", res.RetryAfter)
	}

	// A different client has its own bucket.
	res, err = c.CheckLoginRateLimit(ctx, "198.51.100.1", 1, 3)
	if err != nil || !res.Allowed {
		t.Errorf("other IP should be allowed: %+v, %v", res, err)
	}
}

func TestIntegrationSession_NamespacesAreIsolated(t *testing.T) {
	ctx, staging := newCacheTestEnv(t)
	_, production := openNamespace(t, "pubdocs-test-other")

	if err := staging.SaveSession(ctx, newRecord("shared-id", "alice")); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	if got, err := production.GetSession(ctx, "shared-id"); err != nil || got != nil {
		t.Errorf("other namespace sees session: %+v, %v", got, err)
	}

	// Revoking in one namespace leaves the other alone.
	if err := production.DeleteUserSessions(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUserSessions failed: %v", err)
	}
	if got, _ := staging.GetSession(ctx, "shared-id"); got == nil {
		t.Error("session revoked through a different namespace")
	}

	keys, err := staging.Client().Keys(ctx, "pubdocs-test:auth:session:*").Result()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("session keys = %v, want one under the namespace", keys)
	}
}

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pubdocs/pubdocs/internal/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testRecord(now time.Time) *model.SessionRecord {
	return &model.SessionRecord{
		ID:           "sess-1",
		UserID:       "user-1",
		EmailAddress: "a@x.com",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestNewTokenIssuer_WeakSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer([]byte("short"), "pubdocs"); !errors.Is(err, ErrWeakSecret) {
		t.Errorf("expected ErrWeakSecret, got %v", err)
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer(testSecret, "pubdocs")
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}

	now := time.Now().Truncate(time.Second)
	token, err := issuer.Issue(testRecord(now))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := issuer.Parse(token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.ID != "sess-1" || claims.Subject != "user-1" || claims.Email != "a@x.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testSecret, "pubdocs")
	other, _ := NewTokenIssuer([]byte("ffffffffffffffffffffffffffffffff"), "pubdocs")
	foreign, _ := NewTokenIssuer(testSecret, "someone-else")

	now := time.Now().Truncate(time.Second)
	valid, _ := issuer.Issue(testRecord(now))
	wrongKey, _ := other.Issue(testRecord(now))
	wrongIssuer, _ := foreign.Issue(testRecord(now))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"jti": "sess-1", "sub": "user-1", "iss": "pubdocs",
		"exp": now.Add(time.Hour).Unix(),
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"expired", valid, now.Add(2 * time.Hour)},
		{"wrong key", wrongKey, now},
		{"wrong issuer", wrongIssuer, now},
		{"alg none", unsigned, now},
		{"tampered", valid + "a", now},
		{"garbage", "not.a.token", now},
		{"empty", "", now},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := issuer.Parse(tt.token, tt.at)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenIssuer_NoSecretInToken(t *testing.T) {
	t.Parallel()

	issuer, _ := NewTokenIssuer(testSecret, "pubdocs")
	token, _ := issuer.Issue(testRecord(time.Now()))
	if strings.Contains(token, string(testSecret)) {
		t.Error("token must not embed the signing secret")
	}
}

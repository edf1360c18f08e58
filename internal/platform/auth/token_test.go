package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserName: "admin",
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestTokenStoreRoundTrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.json"))

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load on empty store = %v, want ErrNoSession", err)
	}

	raw := mintToken(t, time.Now().Add(time.Hour))
	if err := store.Save(raw); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != raw {
		t.Errorf("loaded token differs from saved")
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load after Clear = %v, want ErrNoSession", err)
	}
}

func TestSaveEmptyTokenRejected(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(""); err == nil {
		t.Fatal("expected error storing empty token")
	}
}

func TestSessionExpiry(t *testing.T) {
	now := time.Now()

	fresh, err := ParseSession(mintToken(t, now.Add(time.Minute)))
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Expired(now) {
		t.Error("fresh token reported expired")
	}

	stale, err := ParseSession(mintToken(t, now.Add(-time.Second)))
	if err != nil {
		t.Fatal(err)
	}
	if !stale.Expired(now) {
		t.Error("token with exp in the past reported valid")
	}
}

func TestSessionClaims(t *testing.T) {
	s, err := ParseSession(mintToken(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if s.Claims.UserName != "admin" {
		t.Errorf("userName = %q", s.Claims.UserName)
	}
}

func TestSourceToken(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.json"))
	src := NewSource(store)

	// Logged out: empty token, no error, header simply omitted.
	tok, err := src.Token()
	if err != nil || tok != "" {
		t.Fatalf("logged-out Token() = %q, %v", tok, err)
	}

	raw := mintToken(t, time.Now().Add(time.Hour))
	if err := store.Save(raw); err != nil {
		t.Fatal(err)
	}
	tok, err = src.Token()
	if err != nil || tok != raw {
		t.Fatalf("Token() = %q, %v", tok, err)
	}
}

func TestSourceExpiredToken(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(mintToken(t, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	src := NewSource(store)
	src.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := src.Token(); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Token() with stale exp = %v, want ErrSessionExpired", err)
	}
}

func TestSourceGarbageToken(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save("not-a-jwt"); err != nil {
		t.Fatal(err)
	}
	src := NewSource(store)
	if _, err := src.Token(); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Token() with garbage payload = %v, want ErrSessionExpired", err)
	}
}

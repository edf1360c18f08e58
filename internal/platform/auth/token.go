// Package auth holds the client-side session: the persisted login token and
// the expiry check performed before any authenticated call.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// storeKey is the fixed key the raw token payload is persisted under.
const storeKey = "labadmin.auth.token"

var (
	// ErrNoSession means no token has been stored; the caller is logged out.
	ErrNoSession = errors.New("no session stored")
	// ErrSessionExpired means the stored token's exp claim is in the past.
	// Callers must redirect to sign-in; no network round-trip is needed to
	// detect this.
	ErrSessionExpired = errors.New("session expired")
)

// TokenStore persists the raw login token payload as a single-key JSON file.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Save(raw string) error {
	if raw == "" {
		return fmt.Errorf("refusing to store empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	b, err := json.Marshal(map[string]string{storeKey: raw})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

func (s *TokenStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}
	var kv map[string]string
	if err := json.Unmarshal(b, &kv); err != nil {
		return "", fmt.Errorf("decoding token file: %w", err)
	}
	raw := kv[storeKey]
	if raw == "" {
		return "", ErrNoSession
	}
	return raw, nil
}

func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Claims are the token claims the client reads. The signature is not
// verified client-side; only exp and identity fields are consumed.
type Claims struct {
	jwt.RegisteredClaims
	UserName string   `json:"userName,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Session is a parsed login token.
type Session struct {
	Raw    string
	Claims Claims
}

// ParseSession decodes the dot-delimited token without verifying its
// signature; verification is the backend's job, the client only needs the
// exp claim.
func ParseSession(raw string) (*Session, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return &Session{Raw: raw, Claims: claims}, nil
}

// Expired reports whether the token's exp claim is at or before now. A
// token without an exp claim is treated as expired so a malformed login
// payload forces re-authentication.
func (s *Session) Expired(now time.Time) bool {
	if s.Claims.ExpiresAt == nil {
		return true
	}
	return !s.Claims.ExpiresAt.Time.After(now)
}

// Source supplies the bearer token for outgoing calls. It is the uniform
// attachment point: every gateway shares one Source, so no endpoint can
// silently skip the Authorization header while a session exists.
type Source struct {
	store *TokenStore
	// Now is overridable for tests.
	Now func() time.Time
}

func NewSource(store *TokenStore) *Source {
	return &Source{store: store, Now: time.Now}
}

// Token returns the raw token to attach, or "" when logged out (the request
// proceeds without a header, e.g. Login itself). An expired or unparseable
// stored token yields ErrSessionExpired before any network I/O happens.
func (s *Source) Token() (string, error) {
	raw, err := s.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", nil
		}
		return "", err
	}
	sess, err := ParseSession(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if sess.Expired(s.Now()) {
		return "", ErrSessionExpired
	}
	return raw, nil
}

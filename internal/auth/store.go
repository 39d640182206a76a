// Package auth holds the client-side session: the bearer token and the
// user identifier the backend handed out at login.  It is the Go
// counterpart of the browser's localStorage entries, persisted to a
// small JSON file so sessions survive restarts.
package auth

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store keeps the current session and optionally mirrors it to disk.
// A Store with an empty path is purely in-memory, which the tests use.
type Store struct {
	mu     sync.Mutex
	path   string
	token  string
	userID string
}

// NewStore returns a session store backed by the given file path.  The
// path may be empty for an in-memory store.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads a previously persisted session.  A missing file is not an
// error; it simply means nobody is logged in.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var persisted struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &persisted); err != nil {
		return err
	}
	s.token = persisted.Token
	s.userID = persisted.UserID
	return nil
}

// SetSession records a fresh login and persists it.
func (s *Store) SetSession(token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
	return s.persist()
}

// Clear wipes the session, both in memory and on disk.  Used on logout
// and whenever a profile fetch fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// UserID returns the stored user identifier, or "" when logged out.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Authenticated reports whether a usable (present and unexpired) token
// is stored.
func (s *Store) Authenticated() bool {
	t := s.Token()
	return t != "" && !IsTokenExpired(t)
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}{s.token, s.userID})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// IsTokenExpired inspects the exp claim of a JWT without verifying its
// signature; verification is the backend's job, the client only avoids
// sending tokens it knows are dead.  Tokens that cannot be decoded
// count as expired.  Tokens without an exp claim count as live, which
// matches how the original client treated them.
func IsTokenExpired(token string) bool {
	if token == "" {
		return true
	}
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

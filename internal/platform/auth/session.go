package auth

import (
	"errors"
	"sync"
	"time"
)

// ErrWaitingForAuth is returned by Session.Token when no usable token is
// available yet. Callers treat it as a transient condition rather than a
// hard failure: requests against the upstream study source are skipped
// until a token shows up.
var ErrWaitingForAuth = errors.New("Waiting for authentication...")

// TokenSource supplies bearer tokens for outbound calls to the upstream
// study source.
type TokenSource interface {
	Token() (string, error)
}

// Session is an in-memory cache for the upstream bearer token. The token is
// pushed in by whoever acquires it (login flow, refresh loop); readers get
// the current token or ErrWaitingForAuth once it is absent or expired.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time // test hook
}

// NewSession returns an empty session. Token() returns ErrWaitingForAuth
// until Set is called.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Set stores a token with its expiry. A zero expiry means the token does
// not expire.
func (s *Session) Set(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Token returns the cached token, or ErrWaitingForAuth when no token has
// been set or the cached one is past its expiry. An expired token is
// cleared so it is never handed out again.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	token := s.token
	expiresAt := s.expiresAt
	s.mu.RUnlock()

	if token == "" {
		return "", ErrWaitingForAuth
	}
	if !expiresAt.IsZero() && !s.now().Before(expiresAt) {
		s.Clear()
		return "", ErrWaitingForAuth
	}
	return token, nil
}

// Valid reports whether a usable token is currently cached.
func (s *Session) Valid() bool {
	_, err := s.Token()
	return err == nil
}

// Clear drops the cached token, e.g. after the upstream rejects it.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
}

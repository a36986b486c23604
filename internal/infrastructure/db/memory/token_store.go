// Package memory holds process-local adapters for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ticketdesk/dashboard/internal/core/ports"
)

type tokenEntry struct {
	token     string
	expiresAt time.Time
}

// TokenStore keeps bearer tokens in process memory. Tokens do not survive a
// restart.
type TokenStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]tokenEntry
}

func NewTokenStore() *TokenStore {
	return &TokenStore{now: time.Now, tokens: make(map[string]tokenEntry)}
}

func (s *TokenStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[sessionID]
	if !ok {
		return "", ports.ErrTokenNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.tokens, sessionID)
		return "", ports.ErrTokenNotFound
	}
	return e.token, nil
}

// Set stores the token. A ttl of zero keeps it until deleted.
func (s *TokenStore) Set(_ context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := tokenEntry{token: token}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.tokens[sessionID] = e
	return nil
}

func (s *TokenStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}

// Len reports the number of stored tokens, expired ones included.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

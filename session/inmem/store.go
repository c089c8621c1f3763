package inmem

import (
	"sync"

	"github.com/bobinette/atelier/session"
)

// Store keeps the tokens in memory. Nothing survives the process.
type Store struct {
	mu     sync.Locker
	values map[string]string
}

func NewStore() *Store {
	return &Store{
		mu:     &sync.Mutex{},
		values: make(map[string]string),
	}
}

func (s *Store) Load() (session.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return session.Tokens{
		AccessToken:  s.values[session.AccessTokenKey],
		RefreshToken: s.values[session.RefreshTokenKey],
	}, nil
}

func (s *Store) Save(tokens session.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[session.AccessTokenKey] = tokens.AccessToken
	s.values[session.RefreshTokenKey] = tokens.RefreshToken
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, session.AccessTokenKey)
	delete(s.values, session.RefreshTokenKey)
	return nil
}

// Set writes a single key. It exists for tests that need a store in a state
// Save cannot produce, like a half token pair.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

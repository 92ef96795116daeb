package store

import (
	"context"
	"sync"
)

// PushTokenStore maps a user to their current Expo push token. One token per
// user, last registration wins.
type PushTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewPushTokenStore() *PushTokenStore {
	return &PushTokenStore{tokens: make(map[string]string)}
}

func (s *PushTokenStore) Register(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *PushTokenStore) Get(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

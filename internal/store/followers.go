package store

import (
	"context"
	"sort"
	"sync"
)

// FollowerStore keeps the follow graph as two adjacency sets so both
// directions read without scanning.
type FollowerStore struct {
	mu        sync.RWMutex
	followers map[string]map[string]struct{} // userID -> follower IDs
	following map[string]map[string]struct{} // userID -> followed IDs
}

func NewFollowerStore() *FollowerStore {
	return &FollowerStore{
		followers: make(map[string]map[string]struct{}),
		following: make(map[string]map[string]struct{}),
	}
}

// Follow is idempotent; following twice is not an error.
func (s *FollowerStore) Follow(ctx context.Context, followerID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.followers[userID] == nil {
		s.followers[userID] = make(map[string]struct{})
	}
	if s.following[followerID] == nil {
		s.following[followerID] = make(map[string]struct{})
	}
	s.followers[userID][followerID] = struct{}{}
	s.following[followerID][userID] = struct{}{}
	return nil
}

func (s *FollowerStore) Unfollow(ctx context.Context, followerID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.followers[userID], followerID)
	delete(s.following[followerID], userID)
	return nil
}

func (s *FollowerStore) Following(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.following[userID]))
	for id := range s.following[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *FollowerStore) Counts(ctx context.Context, userID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.followers[userID]), len(s.following[userID]), nil
}

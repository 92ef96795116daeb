package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventReviewPublished   = "review.published"
	EventUserFollowed      = "user.followed"
	EventResponsePublished = "response.published"
)

// Event is one entry in a user's activity stream. A feed is the fan-in of
// events from everyone the reader follows.
type Event struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actor_id"`
	Type        string    `json:"type"`
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type FeedStore struct {
	mu      sync.RWMutex
	byActor map[string][]Event
}

func NewFeedStore() *FeedStore {
	return &FeedStore{byActor: make(map[string][]Event)}
}

func (s *FeedStore) Append(ctx context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	s.byActor[e.ActorID] = append(s.byActor[e.ActorID], *e)
	return nil
}

func (s *FeedStore) ListByActors(ctx context.Context, actorIDs []string, limit, offset int) ([]Event, int, error) {
	s.mu.RLock()
	merged := make([]Event, 0)
	for _, id := range actorIDs {
		merged = append(merged, s.byActor[id]...)
	}
	s.mu.RUnlock()

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	total := len(merged)
	if offset >= total {
		return []Event{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return merged[offset:end], total, nil
}

package store

import (
	"context"
	"sync"
	"time"
)

// ConsentRecord is a visitor's cookie-consent choice. Necessary is always
// true; the rest are opt-in. Re-recording is last-write-wins.
type ConsentRecord struct {
	VisitorID     string    `json:"visitor_id"`
	Necessary     bool      `json:"necessary"`
	Functional    bool      `json:"functional"`
	Analytics     bool      `json:"analytics"`
	Marketing     bool      `json:"marketing"`
	PolicyVersion string    `json:"policy_version"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type ConsentStore struct {
	mu      sync.RWMutex
	records map[string]*ConsentRecord
}

func NewConsentStore() *ConsentStore {
	return &ConsentStore{records: make(map[string]*ConsentRecord)}
}

func (s *ConsentStore) Get(ctx context.Context, visitorID string) (*ConsentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[visitorID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (s *ConsentStore) Put(ctx context.Context, rec *ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Necessary = true
	rec.RecordedAt = time.Now().UTC()
	stored := *rec
	s.records[rec.VisitorID] = &stored
	return nil
}

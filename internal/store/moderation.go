package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AppealWindow is how long after a moderation action an appeal is accepted.
const AppealWindow = 14 * 24 * time.Hour

const AppealReceived = "received"

// ModerationAction records an enforcement decision against a user's content.
type ModerationAction struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"` // user the action was taken against
	Target    string    `json:"target"`     // e.g. "review:<id>" or "prompt:<slug>"
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Appeal is a user's contest of a moderation action. One per action.
type Appeal struct {
	ID          string    `json:"id"`
	ActionID    string    `json:"action_id"`
	AppellantID string    `json:"appellant_id"`
	Statement   string    `json:"statement"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// AppealEligible reports whether an action created at actionCreatedAt can
// still be appealed at now. Pure: same inputs, same answer.
func AppealEligible(actionCreatedAt, now time.Time) bool {
	return !now.After(actionCreatedAt.Add(AppealWindow))
}

type ModerationStore struct {
	mu              sync.RWMutex
	actions         map[string]*ModerationAction
	appeals         map[string]*Appeal
	appealsByAction map[string]string

	now func() time.Time // overridable in tests
}

func NewModerationStore() *ModerationStore {
	return &ModerationStore{
		actions:         make(map[string]*ModerationAction),
		appeals:         make(map[string]*Appeal),
		appealsByAction: make(map[string]string),
		now:             time.Now,
	}
}

func (s *ModerationStore) CreateAction(ctx context.Context, a *ModerationAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	stored := *a
	s.actions[a.ID] = &stored
	return nil
}

func (s *ModerationStore) GetAction(ctx context.Context, id string) (*ModerationAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *a
	return &out, nil
}

// CreateAppeal enforces both appeal constraints: the action must still be
// inside the window, and no earlier appeal may exist for it.
func (s *ModerationStore) CreateAppeal(ctx context.Context, ap *Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[ap.ActionID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := s.appealsByAction[ap.ActionID]; exists {
		return ErrConflict
	}
	if !AppealEligible(action.CreatedAt, s.now().UTC()) {
		return ErrInvalid
	}

	ap.ID = uuid.NewString()
	ap.Status = AppealReceived
	ap.CreatedAt = s.now().UTC()
	stored := *ap
	s.appeals[ap.ID] = &stored
	s.appealsByAction[ap.ActionID] = ap.ID
	return nil
}

func (s *ModerationStore) GetAppeal(ctx context.Context, id string) (*Appeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ap, ok := s.appeals[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *ap
	return &out, nil
}

func (s *ModerationStore) GetAppealByAction(ctx context.Context, actionID string) (*Appeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.appealsByAction[actionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s.appeals[id]
	return &out, nil
}

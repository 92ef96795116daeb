package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	hashids "github.com/speps/go-hashids/v2"
)

const (
	TicketOpen     = "open"
	TicketPending  = "pending"
	TicketResolved = "resolved"
	TicketClosed   = "closed"

	RoleUser    = "user"
	RoleSupport = "support"
)

// Ticket is a support case: a status plus an ordered message thread.
type Ticket struct {
	ID          string          `json:"id"`
	Ref         string          `json:"ref"` // public reference code, e.g. JP-8K2M4
	RequesterID string          `json:"requester_id"`
	Subject     string          `json:"subject"`
	Status      string          `json:"status"`
	Messages    []TicketMessage `json:"messages"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type TicketMessage struct {
	ID         string    `json:"id"`
	AuthorRole string    `json:"author_role"` // "user" or "support"
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

func ValidTicketStatus(s string) bool {
	switch s {
	case TicketOpen, TicketPending, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// TransitionOnReply yields the status a ticket moves to when a reply with
// the given author role lands. A support reply parks the ticket in pending;
// a user reply puts (or returns) it to open, including reopening a resolved
// ticket. Closed tickets accept no replies.
func TransitionOnReply(current, authorRole string) (string, error) {
	if current == TicketClosed {
		return current, fmt.Errorf("%w: ticket is closed", ErrConflict)
	}
	switch authorRole {
	case RoleSupport:
		return TicketPending, nil
	case RoleUser:
		return TicketOpen, nil
	}
	return current, fmt.Errorf("%w: unknown author role %q", ErrInvalid, authorRole)
}

var refEncoder = func() *hashids.HashID {
	hd := hashids.NewData()
	hd.Salt = "jeffreysprompts-tickets"
	hd.MinLength = 6
	hd.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	h, err := hashids.NewWithData(hd)
	if err != nil {
		panic(err)
	}
	return h
}()

// NewTicketRef derives the public reference code printed in support emails.
func NewTicketRef(seq int64) string {
	code, err := refEncoder.EncodeInt64([]int64{seq})
	if err != nil {
		return fmt.Sprintf("JP-%d", seq)
	}
	return "JP-" + code
}

type TicketStore struct {
	mu      sync.RWMutex
	seq     int64
	tickets map[string]*Ticket
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: make(map[string]*Ticket)}
}

func (s *TicketStore) Create(ctx context.Context, t *Ticket) error {
	if len(t.Messages) == 0 {
		return fmt.Errorf("%w: a ticket needs an opening message", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.seq++
	t.ID = uuid.NewString()
	t.Ref = NewTicketRef(s.seq)
	t.Status = TicketOpen
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Messages {
		t.Messages[i].ID = uuid.NewString()
		t.Messages[i].CreatedAt = now
	}

	stored := cloneTicket(t)
	s.tickets[t.ID] = stored
	return nil
}

func (s *TicketStore) GetByID(ctx context.Context, id string) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTicket(t), nil
}

func (s *TicketStore) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]Ticket, int, error) {
	s.mu.RLock()
	matched := make([]Ticket, 0)
	for _, t := range s.tickets {
		if t.RequesterID == requesterID {
			matched = append(matched, *cloneTicket(t))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []Ticket{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *TicketStore) Reply(ctx context.Context, ticketID string, msg TicketMessage) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}

	next, err := TransitionOnReply(t.Status, msg.AuthorRole)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg.ID = uuid.NewString()
	msg.CreatedAt = now
	t.Messages = append(t.Messages, msg)
	t.Status = next
	t.UpdatedAt = now

	return cloneTicket(t), nil
}

func (s *TicketStore) SetStatus(ctx context.Context, ticketID, status string) (*Ticket, error) {
	if !ValidTicketStatus(status) {
		return nil, fmt.Errorf("%w: unknown ticket status %q", ErrInvalid, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return cloneTicket(t), nil
}

func cloneTicket(t *Ticket) *Ticket {
	out := *t
	out.Messages = append([]TicketMessage(nil), t.Messages...)
	return &out
}

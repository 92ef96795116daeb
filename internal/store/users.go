package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  password  `json:"-"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// password keeps the plaintext out of JSON and the hash out of handlers.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.text = &text
	p.hash = hash
	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byEmail    map[string]string
	byUsername map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[string]*User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (s *UserStore) Create(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	username := strings.ToLower(user.Username)
	if _, ok := s.byEmail[email]; ok {
		return ErrDuplicateEmail
	}
	if _, ok := s.byUsername[username]; ok {
		return ErrDuplicateUsername
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.byID[user.ID] = &stored
	s.byEmail[email] = user.ID
	s.byUsername[username] = user.ID
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

// Update applies a partial profile update. Only bio and username may move
// through this path; anything else is a programming error.
func (s *UserStore) Update(ctx context.Context, userID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}

	// Validate every field before touching the record so a rejected update
	// leaves nothing half-applied.
	for field, value := range updates {
		switch field {
		case "bio":
		case "username":
			name, _ := value.(string)
			if other, taken := s.byUsername[strings.ToLower(name)]; taken && other != userID {
				return ErrDuplicateUsername
			}
		default:
			return fmt.Errorf("%w: unknown profile field %q", ErrInvalid, field)
		}
	}

	for field, value := range updates {
		switch field {
		case "bio":
			u.Bio, _ = value.(string)
		case "username":
			name, _ := value.(string)
			delete(s.byUsername, strings.ToLower(u.Username))
			u.Username = name
			s.byUsername[strings.ToLower(name)] = userID
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *UserStore) SetAvatar(ctx context.Context, userID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.AvatarURL = url
	u.UpdatedAt = time.Now().UTC()
	return nil
}

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	ContentPrompt     = "prompt"
	ContentBundle     = "bundle"
	ContentWorkflow   = "workflow"
	ContentCollection = "collection"
	ContentSkill      = "skill"
)

func ValidContentType(t string) bool {
	switch t {
	case ContentPrompt, ContentBundle, ContentWorkflow, ContentCollection, ContentSkill:
		return true
	}
	return false
}

// Prompt is one curated catalog item. The catalog is embedded content:
// read-only at runtime, seeded at startup.
type Prompt struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type PromptQuery struct {
	Type     string
	Category string
	Tag      string
	Limit    int
	Offset   int
}

type PromptStore struct {
	mu      sync.RWMutex
	bySlug  map[string]*Prompt
	ordered []string // slugs in seed order
}

func NewPromptStore(seed []Prompt) *PromptStore {
	s := &PromptStore{bySlug: make(map[string]*Prompt, len(seed))}
	for i := range seed {
		p := seed[i]
		s.bySlug[p.Slug] = &p
		s.ordered = append(s.ordered, p.Slug)
	}
	return s
}

func (s *PromptStore) List(ctx context.Context, q PromptQuery) ([]Prompt, int, error) {
	s.mu.RLock()
	matched := make([]Prompt, 0)
	for _, slug := range s.ordered {
		p := s.bySlug[slug]
		if q.Type != "" && p.Type != q.Type {
			continue
		}
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.Tag != "" && !hasTag(p.Tags, q.Tag) {
			continue
		}
		matched = append(matched, *p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if q.Offset >= total {
		return []Prompt{}, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func (s *PromptStore) GetBySlug(ctx context.Context, slug string) (*Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *PromptStore) All(ctx context.Context) ([]Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Prompt, 0, len(s.ordered))
	for _, slug := range s.ordered {
		out = append(out, *s.bySlug[slug])
	}
	return out, nil
}

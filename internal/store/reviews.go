package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	RatingUp   = "up"
	RatingDown = "down"

	StanceHelpful    = "helpful"
	StanceNotHelpful = "not-helpful"
	StanceNone       = "none"

	SortNewest      = "newest"
	SortOldest      = "oldest"
	SortMostHelpful = "most-helpful"

	reviewMinLen = 10
	reviewMaxLen = 2000
)

// sanitizePolicy strips all HTML from review and response bodies on write.
var sanitizePolicy = bluemonday.StrictPolicy()

// Review is a user's rating plus comment on a catalog item. A user has at
// most one review per (content type, content ID); resubmitting overwrites.
type Review struct {
	ID              string          `json:"id"`
	ContentType     string          `json:"content_type"`
	ContentID       string          `json:"content_id"`
	AuthorID        string          `json:"author_id"`
	Rating          string          `json:"rating"` // "up" or "down"
	Content         string          `json:"content"`
	HelpfulCount    int             `json:"helpful_count"`
	NotHelpfulCount int             `json:"not_helpful_count"`
	Reported        bool            `json:"reported"`
	Response        *AuthorResponse `json:"response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AuthorResponse is the content author's single reply to a review.
type AuthorResponse struct {
	ResponderID string    `json:"responder_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReviewReport struct {
	ReviewID   string    `json:"review_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewQuery struct {
	ContentType     string
	ContentID       string
	Sort            string
	IncludeReported bool
	Limit           int
	Offset          int
}

type ReviewSummary struct {
	Total            int     `json:"total"`
	Recent30Days     int     `json:"recent_30_days"`
	UpRatio          float64 `json:"up_ratio"`
	HelpfulnessRatio float64 `json:"helpfulness_ratio"`
}

// SanitizeReviewContent strips HTML, trims, and enforces the length bounds.
func SanitizeReviewContent(raw string) (string, error) {
	clean := strings.TrimSpace(sanitizePolicy.Sanitize(raw))
	if n := len([]rune(clean)); n < reviewMinLen || n > reviewMaxLen {
		return "", fmt.Errorf("%w: review content must be %d-%d characters", ErrInvalid, reviewMinLen, reviewMaxLen)
	}
	return clean, nil
}

// SanitizeResponseContent strips HTML and trims; a response that sanitizes
// to nothing is invalid.
func SanitizeResponseContent(raw string) (string, error) {
	clean := strings.TrimSpace(sanitizePolicy.Sanitize(raw))
	if clean == "" {
		return "", fmt.Errorf("%w: response content is empty", ErrInvalid)
	}
	return clean, nil
}

func ValidRating(r string) bool {
	return r == RatingUp || r == RatingDown
}

type reviewKey struct {
	contentType string
	contentID   string
	authorID    string
}

// ReviewStore is the in-memory implementation. Votes are the source of
// truth; helpful counts are recomputed from them on every vote mutation so
// they can never drift negative.
type ReviewStore struct {
	mu      sync.RWMutex
	byID    map[string]*Review
	byKey   map[reviewKey]string
	votes   map[string]map[string]string // reviewID -> voterID -> stance
	reports map[string][]ReviewReport
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{
		byID:    make(map[string]*Review),
		byKey:   make(map[reviewKey]string),
		votes:   make(map[string]map[string]string),
		reports: make(map[string][]ReviewReport),
	}
}

// Submit creates the review, or overwrites rating and content when the same
// author already reviewed the same content item. Returns true on create.
func (s *ReviewStore) Submit(ctx context.Context, review *Review) (bool, error) {
	if !ValidRating(review.Rating) {
		return false, fmt.Errorf("%w: rating must be %q or %q", ErrInvalid, RatingUp, RatingDown)
	}
	clean, err := SanitizeReviewContent(review.Content)
	if err != nil {
		return false, err
	}
	review.Content = clean

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reviewKey{review.ContentType, review.ContentID, review.AuthorID}
	now := time.Now().UTC()

	if id, ok := s.byKey[key]; ok {
		existing := s.byID[id]
		existing.Rating = review.Rating
		existing.Content = review.Content
		existing.UpdatedAt = now
		*review = *existing
		return false, nil
	}

	review.ID = uuid.NewString()
	review.CreatedAt = now
	review.UpdatedAt = now
	review.HelpfulCount = 0
	review.NotHelpfulCount = 0
	review.Reported = false
	review.Response = nil

	stored := *review
	s.byID[review.ID] = &stored
	s.byKey[key] = review.ID
	return true, nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id string) (*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *ReviewStore) List(ctx context.Context, q ReviewQuery) ([]Review, int, error) {
	s.mu.RLock()
	matched := make([]Review, 0)
	for _, r := range s.byID {
		if r.ContentType != q.ContentType || r.ContentID != q.ContentID {
			continue
		}
		if r.Reported && !q.IncludeReported {
			continue
		}
		matched = append(matched, *r)
	}
	s.mu.RUnlock()

	sortReviews(matched, q.Sort)

	total := len(matched)
	if q.Offset >= total {
		return []Review{}, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func sortReviews(reviews []Review, by string) {
	switch by {
	case SortOldest:
		sort.Slice(reviews, func(i, j int) bool {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		})
	case SortMostHelpful:
		sort.Slice(reviews, func(i, j int) bool {
			if reviews[i].HelpfulCount != reviews[j].HelpfulCount {
				return reviews[i].HelpfulCount > reviews[j].HelpfulCount
			}
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		})
	default: // newest
		sort.Slice(reviews, func(i, j int) bool {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		})
	}
}

func (s *ReviewStore) Summary(ctx context.Context, contentType, contentID string, now time.Time) (*ReviewSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum ReviewSummary
	var up, helpful, notHelpful int
	cutoff := now.Add(-30 * 24 * time.Hour)

	for _, r := range s.byID {
		if r.ContentType != contentType || r.ContentID != contentID || r.Reported {
			continue
		}
		sum.Total++
		if r.Rating == RatingUp {
			up++
		}
		if r.CreatedAt.After(cutoff) {
			sum.Recent30Days++
		}
		helpful += r.HelpfulCount
		notHelpful += r.NotHelpfulCount
	}

	if sum.Total > 0 {
		sum.UpRatio = float64(up) / float64(sum.Total)
	}
	if helpful+notHelpful > 0 {
		sum.HelpfulnessRatio = float64(helpful) / float64(helpful+notHelpful)
	}
	return &sum, nil
}

// Vote records a single voter's stance on a review. The stance overwrites
// any earlier vote by the same voter; StanceNone retracts it.
func (s *ReviewStore) Vote(ctx context.Context, reviewID, voterID, stance string) (*Review, error) {
	if stance != StanceHelpful && stance != StanceNotHelpful && stance != StanceNone {
		return nil, fmt.Errorf("%w: unknown vote stance %q", ErrInvalid, stance)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[reviewID]
	if !ok {
		return nil, ErrNotFound
	}

	if s.votes[reviewID] == nil {
		s.votes[reviewID] = make(map[string]string)
	}
	if stance == StanceNone {
		delete(s.votes[reviewID], voterID)
	} else {
		s.votes[reviewID][voterID] = stance
	}

	r.HelpfulCount, r.NotHelpfulCount = tallyVotes(s.votes[reviewID])
	r.UpdatedAt = time.Now().UTC()

	out := *r
	return &out, nil
}

func tallyVotes(votes map[string]string) (helpful, notHelpful int) {
	for _, stance := range votes {
		switch stance {
		case StanceHelpful:
			helpful++
		case StanceNotHelpful:
			notHelpful++
		}
	}
	return helpful, notHelpful
}

// Report flags the review out of default listings pending moderation.
func (s *ReviewStore) Report(ctx context.Context, reviewID, reporterID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[reviewID]
	if !ok {
		return ErrNotFound
	}
	r.Reported = true
	s.reports[reviewID] = append(s.reports[reviewID], ReviewReport{
		ReviewID:   reviewID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// Respond attaches the content author's reply. A review carries at most one
// response; a second attempt conflicts.
func (s *ReviewStore) Respond(ctx context.Context, reviewID string, resp AuthorResponse) (*Review, error) {
	clean, err := SanitizeResponseContent(resp.Content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[reviewID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Response != nil {
		return nil, ErrConflict
	}
	resp.Content = clean
	resp.CreatedAt = time.Now().UTC()
	r.Response = &resp
	r.UpdatedAt = resp.CreatedAt

	out := *r
	return &out, nil
}

// Delete removes the review, but only for its author. A mismatched caller
// gets ErrNotFound so the handler leaks nothing about foreign reviews.
func (s *ReviewStore) Delete(ctx context.Context, reviewID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[reviewID]
	if !ok || r.AuthorID != authorID {
		return ErrNotFound
	}
	delete(s.byID, reviewID)
	delete(s.byKey, reviewKey{r.ContentType, r.ContentID, r.AuthorID})
	delete(s.votes, reviewID)
	delete(s.reports, reviewID)
	return nil
}

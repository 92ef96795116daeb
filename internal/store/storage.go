package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrInvalid           = errors.New("invalid input")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Prompts interface {
		List(context.Context, PromptQuery) ([]Prompt, int, error)
		GetBySlug(context.Context, string) (*Prompt, error)
		All(context.Context) ([]Prompt, error)
	}
	Reviews interface {
		Submit(context.Context, *Review) (bool, error)
		GetByID(context.Context, string) (*Review, error)
		List(context.Context, ReviewQuery) ([]Review, int, error)
		Summary(ctx context.Context, contentType, contentID string, now time.Time) (*ReviewSummary, error)
		Vote(ctx context.Context, reviewID, voterID, stance string) (*Review, error)
		Report(ctx context.Context, reviewID, reporterID, reason string) error
		Respond(ctx context.Context, reviewID string, resp AuthorResponse) (*Review, error)
		Delete(ctx context.Context, reviewID, authorID string) error
	}
	Tickets interface {
		Create(context.Context, *Ticket) error
		GetByID(context.Context, string) (*Ticket, error)
		ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]Ticket, int, error)
		Reply(ctx context.Context, ticketID string, msg TicketMessage) (*Ticket, error)
		SetStatus(ctx context.Context, ticketID, status string) (*Ticket, error)
	}
	Moderation interface {
		CreateAction(context.Context, *ModerationAction) error
		GetAction(context.Context, string) (*ModerationAction, error)
		CreateAppeal(context.Context, *Appeal) error
		GetAppeal(context.Context, string) (*Appeal, error)
		GetAppealByAction(context.Context, string) (*Appeal, error)
	}
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, string) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		Update(ctx context.Context, userID string, updates map[string]any) error
		SetAvatar(ctx context.Context, userID, url string) error
	}
	Followers interface {
		Follow(ctx context.Context, followerID, userID string) error
		Unfollow(ctx context.Context, followerID, userID string) error
		Following(ctx context.Context, userID string) ([]string, error)
		Counts(ctx context.Context, userID string) (followers int, following int, err error)
	}
	Feed interface {
		Append(context.Context, *Event) error
		ListByActors(ctx context.Context, actorIDs []string, limit, offset int) ([]Event, int, error)
	}
	Consent interface {
		Get(ctx context.Context, visitorID string) (*ConsentRecord, error)
		Put(context.Context, *ConsentRecord) error
	}
	TagMappings interface {
		Resolve(string) string
		ResolveSet([]string) []string
		List() map[string]string
		Upsert(alias, canonical string)
	}
	PushTokens interface {
		Register(ctx context.Context, userID, token string) error
		Get(ctx context.Context, userID string) (string, error)
	}
}

// NewMemoryStorage builds the demo storage: in-process, mutex-guarded maps
// with the curated catalog and default tag aliases pre-seeded.
func NewMemoryStorage() Storage {
	return Storage{
		Prompts:     NewPromptStore(seedPrompts),
		Reviews:     NewReviewStore(),
		Tickets:     NewTicketStore(),
		Moderation:  NewModerationStore(),
		Users:       NewUserStore(),
		Followers:   NewFollowerStore(),
		Feed:        NewFeedStore(),
		Consent:     NewConsentStore(),
		TagMappings: NewTagMap(defaultTagAliases),
		PushTokens:  NewPushTokenStore(),
	}
}

// NewPostgresStorage swaps the user-generated data (reviews, tickets, users,
// followers) onto pgx-backed stores. The curated catalog, tag mappings,
// consent records, moderation ledger and activity feed stay in memory: the
// catalog is embedded content and the rest is demo scope.
func NewPostgresStorage(pool *pgxpool.Pool) Storage {
	s := NewMemoryStorage()
	s.Reviews = &PGReviewStore{db: pool}
	s.Tickets = &PGTicketStore{db: pool}
	s.Users = &PGUserStore{db: pool}
	s.Followers = &PGFollowerStore{db: pool}
	return s
}

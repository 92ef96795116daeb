package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup in DB mode. Idempotent on purpose: the demo
// deployment has no migration tooling to lean on.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	email       TEXT NOT NULL,
	password    BYTEA NOT NULL,
	bio         TEXT NOT NULL DEFAULT '',
	avatar_url  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username));

CREATE TABLE IF NOT EXISTS followers (
	user_id     TEXT NOT NULL,
	follower_id TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, follower_id)
);

CREATE TABLE IF NOT EXISTS reviews (
	id                TEXT PRIMARY KEY,
	content_type      TEXT NOT NULL,
	content_id        TEXT NOT NULL,
	author_id         TEXT NOT NULL,
	rating            TEXT NOT NULL,
	content           TEXT NOT NULL,
	helpful_count     INT NOT NULL DEFAULT 0,
	not_helpful_count INT NOT NULL DEFAULT 0,
	reported          BOOLEAN NOT NULL DEFAULT FALSE,
	response_author   TEXT,
	response_content  TEXT,
	response_at       TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (content_type, content_id, author_id)
);

CREATE TABLE IF NOT EXISTS review_votes (
	review_id  TEXT NOT NULL REFERENCES reviews (id) ON DELETE CASCADE,
	voter_id   TEXT NOT NULL,
	stance     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (review_id, voter_id)
);

CREATE TABLE IF NOT EXISTS review_reports (
	review_id   TEXT NOT NULL REFERENCES reviews (id) ON DELETE CASCADE,
	reporter_id TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tickets (
	id           TEXT PRIMARY KEY,
	seq          BIGSERIAL,
	ref          TEXT NOT NULL DEFAULT '',
	requester_id TEXT NOT NULL,
	subject      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'open',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ticket_messages (
	id          TEXT PRIMARY KEY,
	ticket_id   TEXT NOT NULL REFERENCES tickets (id) ON DELETE CASCADE,
	author_role TEXT NOT NULL,
	author_id   TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ticket_messages_ticket_idx ON ticket_messages (ticket_id, created_at);
`

// EnsureSchema applies the schema. Called once from main in DB mode.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*QueryTimeoutDuration)
	defer cancel()
	_, err := pool.Exec(ctx, schema)
	return err
}

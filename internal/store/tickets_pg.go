package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGTicketStore struct {
	db *pgxpool.Pool
}

func (s *PGTicketStore) Create(ctx context.Context, t *Ticket) error {
	if len(t.Messages) == 0 {
		return fmt.Errorf("%w: a ticket needs an opening message", ErrInvalid)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	t.ID = uuid.NewString()
	t.Status = TicketOpen

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (id, requester_id, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at, updated_at
	`, t.ID, t.RequesterID, t.Subject, t.Status).Scan(&seq, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	t.Ref = NewTicketRef(seq)
	if _, err := tx.Exec(ctx, `UPDATE tickets SET ref = $1 WHERE id = $2`, t.Ref, t.ID); err != nil {
		return err
	}

	for i := range t.Messages {
		m := &t.Messages[i]
		m.ID = uuid.NewString()
		err = tx.QueryRow(ctx, `
			INSERT INTO ticket_messages (id, ticket_id, author_role, author_id, body)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at
		`, m.ID, t.ID, m.AuthorRole, m.AuthorID, m.Body).Scan(&m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to add ticket message: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGTicketStore) GetByID(ctx context.Context, id string) (*Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var t Ticket
	err := s.db.QueryRow(ctx, `
		SELECT id, ref, requester_id, subject, status, created_at, updated_at
		FROM tickets WHERE id = $1
	`, id).Scan(&t.ID, &t.Ref, &t.RequesterID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	msgs, err := s.messages(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	return &t, nil
}

func (s *PGTicketStore) messages(ctx context.Context, ticketID string) ([]TicketMessage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, author_role, author_id, body, created_at
		FROM ticket_messages WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []TicketMessage
	for rows.Next() {
		var m TicketMessage
		if err := rows.Scan(&m.ID, &m.AuthorRole, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PGTicketStore) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]Ticket, int, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, ref, requester_id, subject, status, created_at, updated_at, COUNT(*) OVER() AS total
		FROM tickets
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, requesterID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []Ticket{}
	var total int
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Ref, &t.RequesterID, &t.Subject, &t.Status, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	return tickets, total, rows.Err()
}

func (s *PGTicketStore) Reply(ctx context.Context, ticketID string, msg TicketMessage) (*Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id = $1 FOR UPDATE`, ticketID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	next, err := TransitionOnReply(status, msg.AuthorRole)
	if err != nil {
		return nil, err
	}

	msg.ID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO ticket_messages (id, ticket_id, author_role, author_id, body)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, ticketID, msg.AuthorRole, msg.AuthorID, msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to add reply: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE tickets SET status = $1, updated_at = now() WHERE id = $2`, next, ticketID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ticketID)
}

func (s *PGTicketStore) SetStatus(ctx context.Context, ticketID, status string) (*Ticket, error) {
	if !ValidTicketStatus(status) {
		return nil, fmt.Errorf("%w: unknown ticket status %q", ErrInvalid, status)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `UPDATE tickets SET status = $1, updated_at = now() WHERE id = $2`, status, ticketID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, ticketID)
}

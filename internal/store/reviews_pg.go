package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgForeignKeyViolation reports whether err is a foreign-key violation
// (SQLSTATE 23503), meaning the referenced row does not exist.
func pgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// PGReviewStore is the Postgres implementation of the review store. Vote
// counts live as columns but are always recomputed from review_votes inside
// the same transaction as the vote mutation.
type PGReviewStore struct {
	db *pgxpool.Pool
}

func (s *PGReviewStore) Submit(ctx context.Context, review *Review) (bool, error) {
	if !ValidRating(review.Rating) {
		return false, fmt.Errorf("%w: rating must be %q or %q", ErrInvalid, RatingUp, RatingDown)
	}
	clean, err := SanitizeReviewContent(review.Content)
	if err != nil {
		return false, err
	}
	review.Content = clean

	query := `
		INSERT INTO reviews (id, content_type, content_id, author_id, rating, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_type, content_id, author_id)
		DO UPDATE SET rating = EXCLUDED.rating, content = EXCLUDED.content, updated_at = now()
		RETURNING id, helpful_count, not_helpful_count, reported, created_at, updated_at, (xmax = 0) AS inserted
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var created bool
	err = s.db.QueryRow(ctx, query,
		uuid.NewString(),
		review.ContentType,
		review.ContentID,
		review.AuthorID,
		review.Rating,
		review.Content,
	).Scan(
		&review.ID,
		&review.HelpfulCount,
		&review.NotHelpfulCount,
		&review.Reported,
		&review.CreatedAt,
		&review.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, fmt.Errorf("failed to submit review: %w", err)
	}
	return created, nil
}

const reviewColumns = `
	id, content_type, content_id, author_id, rating, content,
	helpful_count, not_helpful_count, reported,
	response_author, response_content, response_at,
	created_at, updated_at
`

func scanReview(row pgx.Row) (*Review, error) {
	var r Review
	var respAuthor, respContent *string
	var respAt *time.Time
	err := row.Scan(
		&r.ID, &r.ContentType, &r.ContentID, &r.AuthorID, &r.Rating, &r.Content,
		&r.HelpfulCount, &r.NotHelpfulCount, &r.Reported,
		&respAuthor, &respContent, &respAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if respAuthor != nil && respContent != nil && respAt != nil {
		r.Response = &AuthorResponse{ResponderID: *respAuthor, Content: *respContent, CreatedAt: *respAt}
	}
	return &r, nil
}

func (s *PGReviewStore) GetByID(ctx context.Context, id string) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	row := s.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

func (s *PGReviewStore) List(ctx context.Context, q ReviewQuery) ([]Review, int, error) {
	order := "created_at DESC"
	switch q.Sort {
	case SortOldest:
		order = "created_at ASC"
	case SortMostHelpful:
		order = "helpful_count DESC, created_at DESC"
	}

	query := `
		SELECT ` + reviewColumns + `, COUNT(*) OVER() AS total
		FROM reviews
		WHERE content_type = $1 AND content_id = $2 AND ($3 OR NOT reported)
		ORDER BY ` + order + `
		LIMIT $4 OFFSET $5
	`

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, q.ContentType, q.ContentID, q.IncludeReported, limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	var total int
	for rows.Next() {
		var r Review
		var respAuthor, respContent *string
		var respAt *time.Time
		err := rows.Scan(
			&r.ID, &r.ContentType, &r.ContentID, &r.AuthorID, &r.Rating, &r.Content,
			&r.HelpfulCount, &r.NotHelpfulCount, &r.Reported,
			&respAuthor, &respContent, &respAt,
			&r.CreatedAt, &r.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, err
		}
		if respAuthor != nil && respContent != nil && respAt != nil {
			r.Response = &AuthorResponse{ResponderID: *respAuthor, Content: *respContent, CreatedAt: *respAt}
		}
		reviews = append(reviews, r)
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, total, rows.Err()
}

func (s *PGReviewStore) Summary(ctx context.Context, contentType, contentID string, now time.Time) (*ReviewSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at > $3),
			COALESCE(AVG(CASE WHEN rating = 'up' THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(SUM(helpful_count), 0),
			COALESCE(SUM(not_helpful_count), 0)
		FROM reviews
		WHERE content_type = $1 AND content_id = $2 AND NOT reported
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var sum ReviewSummary
	var helpful, notHelpful int
	err := s.db.QueryRow(ctx, query, contentType, contentID, now.Add(-30*24*time.Hour)).
		Scan(&sum.Total, &sum.Recent30Days, &sum.UpRatio, &helpful, &notHelpful)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews: %w", err)
	}
	if helpful+notHelpful > 0 {
		sum.HelpfulnessRatio = float64(helpful) / float64(helpful+notHelpful)
	}
	return &sum, nil
}

func (s *PGReviewStore) Vote(ctx context.Context, reviewID, voterID, stance string) (*Review, error) {
	if stance != StanceHelpful && stance != StanceNotHelpful && stance != StanceNone {
		return nil, fmt.Errorf("%w: unknown vote stance %q", ErrInvalid, stance)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if stance == StanceNone {
		_, err = tx.Exec(ctx, `DELETE FROM review_votes WHERE review_id = $1 AND voter_id = $2`, reviewID, voterID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO review_votes (review_id, voter_id, stance) VALUES ($1, $2, $3)
			ON CONFLICT (review_id, voter_id) DO UPDATE SET stance = EXCLUDED.stance
		`, reviewID, voterID, stance)
	}
	if err != nil {
		if pgForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	row := tx.QueryRow(ctx, `
		UPDATE reviews SET
			helpful_count     = (SELECT COUNT(*) FROM review_votes WHERE review_id = $1 AND stance = 'helpful'),
			not_helpful_count = (SELECT COUNT(*) FROM review_votes WHERE review_id = $1 AND stance = 'not-helpful'),
			updated_at        = now()
		WHERE id = $1
		RETURNING `+reviewColumns+`
	`, reviewID)

	review, err := scanReview(row)
	if err != nil {
		return nil, err
	}
	return review, tx.Commit(ctx)
}

func (s *PGReviewStore) Report(ctx context.Context, reviewID, reporterID, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE reviews SET reported = TRUE WHERE id = $1`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO review_reports (review_id, reporter_id, reason) VALUES ($1, $2, $3)
	`, reviewID, reporterID, reason)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGReviewStore) Respond(ctx context.Context, reviewID string, resp AuthorResponse) (*Review, error) {
	clean, err := SanitizeResponseContent(resp.Content)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	row := s.db.QueryRow(ctx, `
		UPDATE reviews
		SET response_author = $2, response_content = $3, response_at = now(), updated_at = now()
		WHERE id = $1 AND response_content IS NULL
		RETURNING `+reviewColumns+`
	`, reviewID, resp.ResponderID, clean)

	review, err := scanReview(row)
	if errors.Is(err, ErrNotFound) {
		// Either no such review or it already has a response.
		if _, getErr := s.GetByID(ctx, reviewID); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	return review, err
}

func (s *PGReviewStore) Delete(ctx context.Context, reviewID, authorID string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND author_id = $2`, reviewID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

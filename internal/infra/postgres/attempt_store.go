package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"cricket-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore persists finished quiz attempts.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// SaveAttempt inserts the attempt. Saving the same ID twice is a no-op.
func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt %s: %w", attempt.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, slot_id, format, brand, score, total_questions, reviewed, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		attempt.ID, attempt.UserID, attempt.SlotID, attempt.Format, attempt.Brand,
		attempt.Score, attempt.TotalQuestions, attempt.Reviewed, raw, attempt.Timestamp)
	if err != nil {
		return fmt.Errorf("save attempt %s: %w", attempt.ID, err)
	}
	return nil
}

// RecentAttempts returns up to limit attempts for userID, newest first.
func (s *AttemptStore) RecentAttempts(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data, reviewed FROM quiz_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.QuizAttempt
	for rows.Next() {
		var (
			raw      []byte
			reviewed bool
		)
		if err := rows.Scan(&raw, &reviewed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var attempt domain.QuizAttempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempt.Reviewed = reviewed
		out = append(out, attempt)
	}
	return out, rows.Err()
}

// MarkReviewed flags the attempt as reviewed by its player.
func (s *AttemptStore) MarkReviewed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE quiz_attempts SET reviewed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark attempt %s reviewed: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cricket-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SlotLoader loads live quiz slot JSONB from Postgres.
type SlotLoader struct {
	pool *pgxpool.Pool
}

func NewSlotLoader(pool *pgxpool.Pool) *SlotLoader {
	return &SlotLoader{pool: pool}
}

// LoadLiveSlot returns the most recently scheduled live slot for format.
func (l *SlotLoader) LoadLiveSlot(ctx context.Context, format string) (domain.QuizSlot, error) {
	var (
		id  string
		raw []byte
	)
	err := l.pool.QueryRow(ctx, `
		SELECT id, data FROM quiz_slots
		WHERE format = $1 AND status = $2
		ORDER BY scheduled_date DESC NULLS LAST, created_at DESC
		LIMIT 1`, format, string(domain.SlotLive)).Scan(&id, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSlot{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.QuizSlot{}, fmt.Errorf("load slot %s: %w", format, err)
	}
	var slot domain.QuizSlot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return domain.QuizSlot{}, fmt.Errorf("unmarshal slot %s: %w", id, err)
	}
	if slot.ID == "" {
		slot.ID = id
	}
	return slot, nil
}

// UpsertSlot stores a slot document, keyed by its ID.
func (l *SlotLoader) UpsertSlot(ctx context.Context, slot domain.QuizSlot) error {
	raw, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot.ID, err)
	}
	var scheduled any
	if !slot.ScheduledDate.IsZero() {
		scheduled = slot.ScheduledDate
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO quiz_slots (id, format, status, scheduled_date, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET format = EXCLUDED.format, status = EXCLUDED.status,
		    scheduled_date = EXCLUDED.scheduled_date, data = EXCLUDED.data`,
		slot.ID, slot.Format, string(slot.Status), scheduled, raw)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot.ID, err)
	}
	return nil
}

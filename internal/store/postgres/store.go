package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"turnon/internal/models"
	"turnon/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dayLayout = "2006-01-02"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) RecordTurnEvent(ctx context.Context, event store.TurnEvent) error {
	if event.TurnID == 0 || strings.TrimSpace(event.Action) == "" {
		return store.ErrInvalidEvent
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO turn_events (event_id, turn_id, action, status, user_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`, event.EventID, event.TurnID, event.Action, event.Status, event.UserID, event.OccurredAt)
	return err
}

func (s *Store) ListTurnEvents(ctx context.Context, turnID int64) ([]store.TurnEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, turn_id, action, status, user_id, occurred_at
		FROM turn_events
		WHERE turn_id = $1
		ORDER BY occurred_at ASC, event_id ASC
	`, turnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []store.TurnEvent
	for rows.Next() {
		var event store.TurnEvent
		if err := rows.Scan(&event.EventID, &event.TurnID, &event.Action, &event.Status, &event.UserID, &event.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) UpsertDailyStats(ctx context.Context, stats models.DailyStats) error {
	day, err := time.Parse(dayLayout, stats.Day)
	if err != nil {
		return fmt.Errorf("%w: %q", store.ErrInvalidDay, stats.Day)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO daily_stats (day, total, pending, active, completed, cancelled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (day) DO UPDATE SET
			total = EXCLUDED.total,
			pending = EXCLUDED.pending,
			active = EXCLUDED.active,
			completed = EXCLUDED.completed,
			cancelled = EXCLUDED.cancelled,
			updated_at = NOW()
	`, day, stats.Total, stats.Pending, stats.Active, stats.Completed, stats.Cancelled)
	return err
}

// ListDailyStats returns the stored days in [from, to], oldest first. Only
// the calendar date of each bound is used.
func (s *Store) ListDailyStats(ctx context.Context, from, to time.Time) ([]models.DailyStats, error) {
	fromDay, err := time.Parse(dayLayout, from.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	toDay, err := time.Parse(dayLayout, to.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT day, total, pending, active, completed, cancelled
		FROM daily_stats
		WHERE day >= $1 AND day <= $2
		ORDER BY day ASC
	`, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.DailyStats{}
	for rows.Next() {
		var row models.DailyStats
		var day time.Time
		if err := rows.Scan(&day, &row.Total, &row.Pending, &row.Active, &row.Completed, &row.Cancelled); err != nil {
			return nil, err
		}
		row.Day = day.Format(dayLayout)
		stats = append(stats, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

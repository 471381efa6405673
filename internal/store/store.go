package store

import (
	"context"
	"time"

	"turnon/internal/models"
)

// TurnEvent is one mutation observed by the gateway.
type TurnEvent struct {
	EventID    string    `json:"event_id"`
	TurnID     int64     `json:"turn_id"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	UserID     *int64    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ActivityStore interface {
	RecordTurnEvent(ctx context.Context, event TurnEvent) error
	UpsertDailyStats(ctx context.Context, stats models.DailyStats) error
	ListDailyStats(ctx context.Context, from, to time.Time) ([]models.DailyStats, error)
	ListTurnEvents(ctx context.Context, turnID int64) ([]TurnEvent, error)
}

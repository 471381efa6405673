package postgres

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"turnon/internal/models"
	"turnon/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestTurnEventsRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	userID := int64(4)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []store.TurnEvent{
		{EventID: uuid.NewString(), TurnID: 12, Action: "create", Status: models.StatusPending, UserID: &userID, OccurredAt: base},
		{EventID: uuid.NewString(), TurnID: 12, Action: "complete", Status: models.StatusCompleted, UserID: &userID, OccurredAt: base.Add(time.Hour)},
		{EventID: uuid.NewString(), TurnID: 13, Action: "cancel", Status: models.StatusCancelled, OccurredAt: base},
	}
	for _, event := range events {
		if err := st.RecordTurnEvent(ctx, event); err != nil {
			t.Fatalf("record event: %v", err)
		}
	}
	if err := st.RecordTurnEvent(ctx, events[0]); err != nil {
		t.Fatalf("duplicate event should be ignored: %v", err)
	}

	got, err := st.ListTurnEvents(ctx, 12)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Action != "create" || got[1].Action != "complete" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].UserID == nil || *got[0].UserID != userID {
		t.Fatalf("user id not stored: %+v", got[0])
	}
	if got[0].EventID != events[0].EventID {
		t.Fatalf("event id mismatch: %s", got[0].EventID)
	}

	if err := st.RecordTurnEvent(ctx, store.TurnEvent{Action: "create"}); !errors.Is(err, store.ErrInvalidEvent) {
		t.Fatalf("expected invalid event, got %v", err)
	}
}

func TestDailyStatsUpsert(t *testing.T) {
	ctx := context.Background()
	st, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	if err := st.UpsertDailyStats(ctx, models.DailyStats{Day: "2026-03-09", Total: 2, Pending: 2}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.UpsertDailyStats(ctx, models.DailyStats{Day: "2026-03-10", Total: 1, Completed: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.UpsertDailyStats(ctx, models.DailyStats{Day: "2026-03-09", Total: 5, Completed: 3, Cancelled: 2}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if err := st.UpsertDailyStats(ctx, models.DailyStats{Day: "09/03/2026"}); !errors.Is(err, store.ErrInvalidDay) {
		t.Fatalf("expected invalid day, got %v", err)
	}

	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	got, err := st.ListDailyStats(ctx, from, from.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []models.DailyStats{
		{Day: "2026-03-09", Total: 5, Completed: 3, Cancelled: 2},
		{Day: "2026-03-10", Total: 1, Completed: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	got, err = st.ListDailyStats(ctx, from.AddDate(0, 0, 7), from.AddDate(0, 0, 13))
	if err != nil {
		t.Fatalf("list empty week: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}

func setupTestStore(t *testing.T, ctx context.Context) (*Store, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := execOnce(ctx, dsn, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	if err := applyMigrations(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		_ = execOnce(context.Background(), dsn, "DROP SCHEMA "+schema+" CASCADE")
	}
	return NewStore(pool), cleanup
}

func execOnce(ctx context.Context, dsn, statement string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, statement)
	return err
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir := filepath.Join("..", "..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return err
		}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"turnon/internal/chart"
	"turnon/internal/models"
)

type fakeDaily struct {
	listFn func(ctx context.Context, from, to time.Time) ([]models.DailyStats, error)
}

func (f fakeDaily) ListDailyStats(ctx context.Context, from, to time.Time) ([]models.DailyStats, error) {
	return f.listFn(ctx, from, to)
}

func weekTurns() *fakeBackend {
	return &fakeBackend{getFn: func(context.Context, string, url.Values) (any, error) {
		return []any{
			map[string]any{"id": 1.0, "startTime": "2026-03-09T10:00:00Z"},
			map[string]any{"id": 2.0, "startTime": "2026-03-10T10:00:00Z"},
			map[string]any{"id": 3.0, "startTime": "2026-03-10T11:00:00Z"},
		}, nil
	}}
}

func TestDashboardChartFromLiveTurns(t *testing.T) {
	dash := NewDashboard(testTurns(weekTurns(), TurnOptions{}), nil)
	got, err := dash.Chart(context.Background(), "")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	want := chart.SmoothPaths([]models.ChartPoint{
		{Label: "Lun", Value: 1}, {Label: "Mar", Value: 2}, {Label: "Mié"}, {Label: "Jue"},
		{Label: "Vie"}, {Label: "Sáb"}, {Label: "Dom"},
	})
	if got.Line != want.Line || got.Area != want.Area || got.Highlight != 3 {
		t.Fatalf("unexpected chart %+v", got)
	}
}

func TestDashboardChartPrefersDailyStats(t *testing.T) {
	var gotFrom, gotTo time.Time
	daily := fakeDaily{listFn: func(_ context.Context, from, to time.Time) ([]models.DailyStats, error) {
		gotFrom, gotTo = from, to
		return []models.DailyStats{{Day: "2026-03-09", Total: 4}}, nil
	}}
	dash := NewDashboard(testTurns(weekTurns(), TurnOptions{}), daily)
	got, err := dash.Chart(context.Background(), "2026-03-12")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if gotFrom.Format("2006-01-02") != "2026-03-09" || gotTo.Format("2006-01-02") != "2026-03-15" {
		t.Fatalf("unexpected range %s..%s", gotFrom, gotTo)
	}
	if got.Points[0].Value != 4 || got.Points[1].Value != 2 {
		t.Fatalf("unexpected points %+v", got.Points)
	}
}

func TestDashboardChartFallsBackWhenStatsFail(t *testing.T) {
	daily := fakeDaily{listFn: func(context.Context, time.Time, time.Time) ([]models.DailyStats, error) {
		return nil, errors.New("db down")
	}}
	got, err := NewDashboard(testTurns(weekTurns(), TurnOptions{}), daily).Chart(context.Background(), "")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if got.Points[1].Value != 2 {
		t.Fatalf("expected live series, got %+v", got.Points)
	}

	if _, err := NewDashboard(testTurns(weekTurns(), TurnOptions{}), nil).Chart(context.Background(), "next week"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"turnon/internal/chart"
	"turnon/internal/models"
)

type DailySource interface {
	ListDailyStats(ctx context.Context, from, to time.Time) ([]models.DailyStats, error)
}

type Dashboard struct {
	turns *Turns
	daily DailySource
}

// NewDashboard builds the chart service. daily is optional; without it the
// series is counted from the live turn list.
func NewDashboard(turns *Turns, daily DailySource) *Dashboard {
	return &Dashboard{turns: turns, daily: daily}
}

// Chart returns the weekly turns chart for the week containing weekOf
// (YYYY-MM-DD, empty for the current week).
func (d *Dashboard) Chart(ctx context.Context, weekOf string) (models.ChartPaths, error) {
	loc := d.turns.Location()
	ref := d.turns.now().In(loc)
	if weekOf = strings.TrimSpace(weekOf); weekOf != "" {
		parsed, err := time.ParseInLocation(dateLayout, weekOf, loc)
		if err != nil {
			return models.ChartPaths{}, fmt.Errorf("%w: week must be YYYY-MM-DD", ErrValidation)
		}
		ref = parsed
	}
	start := chart.WeekStart(ref, loc)

	turns, err := d.turns.List(ctx)
	if err != nil {
		return models.ChartPaths{}, err
	}
	series := chart.WeeklySeries(turns, start, loc)

	if d.daily != nil {
		stats, err := d.daily.ListDailyStats(ctx, start, start.AddDate(0, 0, 6))
		if err != nil {
			log.Printf("daily stats unavailable week=%s err=%v", start.Format(dateLayout), err)
		} else {
			series = chart.SeriesFromDaily(stats, start, loc, series)
		}
	}
	return chart.SmoothPaths(series), nil
}

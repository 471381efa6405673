package chart

import (
	"math"
	"time"

	"turnon/internal/models"
	"turnon/internal/queue"
)

var weekdayLabels = [7]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

// WeekStart returns midnight of the Monday on or before t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -offset)
}

// WeeklySeries counts turns per weekday of the week starting at weekStart.
// Turns without a readable start time, or outside the week, are ignored.
func WeeklySeries(turns []models.Turn, weekStart time.Time, loc *time.Location) []models.ChartPoint {
	if loc == nil {
		loc = time.Local
	}
	start := WeekStart(weekStart, loc)
	series := emptyWeek()
	for _, turn := range turns {
		t, ok := queue.ParseTime(turn.StartTime, loc)
		if !ok {
			continue
		}
		t = t.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		idx := int(math.Round(day.Sub(start).Hours() / 24))
		if idx < 0 || idx > 6 {
			continue
		}
		series[idx].Value++
	}
	return series
}

// SeriesFromDaily maps persisted daily totals onto the week starting at
// weekStart. Days without a row take the value from live, or zero when live
// is nil.
func SeriesFromDaily(stats []models.DailyStats, weekStart time.Time, loc *time.Location, live []models.ChartPoint) []models.ChartPoint {
	start := WeekStart(weekStart, loc)
	byDay := make(map[string]int, len(stats))
	for _, s := range stats {
		byDay[s.Day] = s.Total
	}
	series := emptyWeek()
	for i := range series {
		total, ok := byDay[start.AddDate(0, 0, i).Format("2006-01-02")]
		switch {
		case ok:
			series[i].Value = float64(total)
		case i < len(live):
			series[i].Value = live[i].Value
		}
	}
	return series
}

func emptyWeek() []models.ChartPoint {
	series := make([]models.ChartPoint, len(weekdayLabels))
	for i, label := range weekdayLabels {
		series[i] = models.ChartPoint{Label: label}
	}
	return series
}

package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"turnon/internal/models"

	"github.com/robfig/cron/v3"
)

type DayCounter interface {
	DayStats(ctx context.Context, date string) (models.DailyStats, error)
}

type StatsWriter interface {
	UpsertDailyStats(ctx context.Context, stats models.DailyStats) error
}

// Rollup persists the current day's turn counts on a cron schedule so the
// dashboard chart can read history without refetching every turn.
type Rollup struct {
	counter DayCounter
	writer  StatsWriter
	loc     *time.Location
	now     func() time.Time
	timeout time.Duration
	cron    *cron.Cron
}

func NewRollup(counter DayCounter, writer StatsWriter, loc *time.Location) *Rollup {
	if loc == nil {
		loc = time.Local
	}
	return &Rollup{
		counter: counter,
		writer:  writer,
		loc:     loc,
		now:     time.Now,
		timeout: 30 * time.Second,
	}
}

func (r *Rollup) RunOnce(ctx context.Context) error {
	day := r.now().In(r.loc).Format("2006-01-02")
	stats, err := r.counter.DayStats(ctx, day)
	if err != nil {
		return fmt.Errorf("count %s: %w", day, err)
	}
	if err := r.writer.UpsertDailyStats(ctx, stats); err != nil {
		return fmt.Errorf("store %s: %w", day, err)
	}
	log.Printf("daily stats stored day=%s total=%d", stats.Day, stats.Total)
	return nil
}

// Start schedules RunOnce with a standard five-field cron spec evaluated in
// the rollup's time zone.
func (r *Rollup) Start(spec string) error {
	c := cron.New(cron.WithLocation(r.loc))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("daily stats rollup error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("rollup schedule %q: %w", spec, err)
	}
	r.cron = c
	c.Start()
	log.Printf("daily stats rollup scheduled spec=%q", spec)
	return nil
}

// Stop waits for a running job to finish.
func (r *Rollup) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

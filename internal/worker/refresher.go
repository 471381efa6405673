// Package worker holds the gateway's background jobs: the kiosk refresher
// and the daily statistics rollup.
package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"turnon/internal/hub"
	"turnon/internal/models"
	"turnon/internal/queue"
)

type ViewSource interface {
	View(ctx context.Context, date string, doctorID int64) (models.QueueView, error)
}

type RefresherConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Refresher keeps the kiosk snapshot current. It refreshes on every hub
// signal and on a fixed interval as a backstop for missed signals; at most
// one refresh runs at a time.
type Refresher struct {
	source   ViewSource
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	running  int32

	mu       sync.RWMutex
	snapshot models.KioskSnapshot
}

func NewRefresher(source ViewSource, cfg RefresherConfig) *Refresher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Refresher{
		source:   source,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		snapshot: models.KioskSnapshot{View: queue.BuildView("", nil, nil)},
	}
}

// Refresh fetches a new view unless one is already being fetched, and
// reports whether it ran. A failed fetch keeps the previous view and marks
// it stale.
func (r *Refresher) Refresh(ctx context.Context) bool {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return false
	}
	defer atomic.StoreInt32(&r.running, 0)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	view, err := r.source.View(ctx, "", 0)
	cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Printf("kiosk refresh error: %v", err)
		r.snapshot.Stale = true
		return true
	}
	r.snapshot = models.KioskSnapshot{View: view, UpdatedAt: r.now().UTC()}
	return true
}

func (r *Refresher) Snapshot() models.KioskSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Run refreshes once, then on every signal and tick until ctx is done.
func (r *Refresher) Run(ctx context.Context, signals <-chan hub.Event) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		case _, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			r.Refresh(ctx)
		}
	}
}

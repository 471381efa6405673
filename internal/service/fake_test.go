package service

import (
	"context"
	"net/url"
	"sync"
	"time"

	"turnon/internal/models"
	"turnon/internal/store"
)

type fakeBackend struct {
	getFn   func(ctx context.Context, path string, query url.Values) (any, error)
	postFn  func(ctx context.Context, path string, body any) (any, error)
	putFn   func(ctx context.Context, path string, body any) (any, error)
	patchFn func(ctx context.Context, path string, body any) (any, error)
}

func (f *fakeBackend) Get(ctx context.Context, path string, query url.Values) (any, error) {
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(ctx, path, query)
}

func (f *fakeBackend) Post(ctx context.Context, path string, body any) (any, error) {
	if f.postFn == nil {
		return nil, nil
	}
	return f.postFn(ctx, path, body)
}

func (f *fakeBackend) Put(ctx context.Context, path string, body any) (any, error) {
	if f.putFn == nil {
		return nil, nil
	}
	return f.putFn(ctx, path, body)
}

func (f *fakeBackend) Patch(ctx context.Context, path string, body any) (any, error) {
	if f.patchFn == nil {
		return nil, nil
	}
	return f.patchFn(ctx, path, body)
}

type recordingNotifier struct {
	mu      sync.Mutex
	actions []string
}

func (n *recordingNotifier) TurnsUpdated(_ context.Context, _ int64, _ *int64, action string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
}

type recordingActivity struct {
	events []store.TurnEvent
}

func (a *recordingActivity) RecordTurnEvent(_ context.Context, event store.TurnEvent) error {
	a.events = append(a.events, event)
	return nil
}

type fakeSessions struct {
	token   string
	user    models.SessionUser
	cleared bool
}

func (s *fakeSessions) Save(token string, user models.SessionUser) error {
	s.token = token
	s.user = user
	return nil
}

func (s *fakeSessions) Clear() error {
	s.cleared = true
	s.token = ""
	return nil
}

// fixedNow is a Tuesday.
var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testTurns(api Backend, options TurnOptions) *Turns {
	options.Location = time.UTC
	options.Now = func() time.Time { return fixedNow }
	return NewTurns(api, options)
}

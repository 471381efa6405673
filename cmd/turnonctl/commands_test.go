package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"turnon/internal/config"
	"turnon/internal/session"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu      sync.Mutex
	bearers []string
	patched []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.bearers = append(b.bearers, r.Header.Get("Authorization"))
	b.mu.Unlock()

	turns := []map[string]any{
		{"id": 1, "patientName": "Ana Perez", "startTime": "2026-03-10T09:30:00Z", "status": "PENDING", "service": map[string]any{"name": "General"}},
		{"id": 2, "patientName": "Luis Gomez", "startTime": "2026-03-10T09:00:00Z", "status": "ACTIVE"},
		{"id": 3, "patientName": "Old Visit", "startTime": "2026-03-09T09:00:00Z", "status": "COMPLETED"},
	}
	byStatus := func(status string) []map[string]any {
		var out []map[string]any
		for _, t := range turns {
			if t["status"] == status {
				out = append(out, t)
			}
		}
		return out
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "opaque-token",
			"user":  map[string]any{"id": 7, "name": "Marta", "email": "marta@clinic.test", "role": "ADMIN"},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/turns":
		_ = json.NewEncoder(w).Encode(map[string]any{"data": turns})
	case r.Method == http.MethodGet && r.URL.Path == "/api/turns/pending":
		_ = json.NewEncoder(w).Encode(byStatus("PENDING"))
	case r.Method == http.MethodGet && r.URL.Path == "/api/turns/active":
		_ = json.NewEncoder(w).Encode(byStatus("ACTIVE"))
	case r.Method == http.MethodPatch:
		b.mu.Lock()
		b.patched = append(b.patched, r.URL.Path)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestApp(t *testing.T) (*app, *backend, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sessions, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	out := &bytes.Buffer{}
	cfg := config.Config{APIBaseURL: srv.URL, APITimeout: 5 * time.Second, Location: time.UTC}
	return newApp(cfg, sessions, out), b, out
}

func TestCommandsRequireLogin(t *testing.T) {
	a, b, _ := newTestApp(t)

	assert.ErrorIs(t, a.run(context.Background(), []string{"queue"}), errNotLoggedIn)
	assert.ErrorIs(t, a.run(context.Background(), []string{"whoami"}), errNotLoggedIn)
	assert.Empty(t, b.bearers)
}

func TestLoginWhoamiLogout(t *testing.T) {
	a, _, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"login", "marta@clinic.test", "secret"}))
	assert.Contains(t, out.String(), "logged in as Marta (Administrador)")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"whoami"}))
	assert.Equal(t, "Marta (Administrador)\n", out.String())

	require.NoError(t, a.run(ctx, []string{"logout"}))
	assert.ErrorIs(t, a.run(ctx, []string{"whoami"}), errNotLoggedIn)
}

func TestQueueUsesStoredToken(t *testing.T) {
	a, b, out := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"login", "marta@clinic.test", "secret"}))
	out.Reset()

	require.NoError(t, a.run(ctx, []string{"queue", "-date", "2026-03-10"}))

	text := out.String()
	assert.Contains(t, text, "Queue 2026-03-10")
	assert.Contains(t, text, "total 2")
	assert.Contains(t, text, "Ana Perez")
	assert.Contains(t, text, "Luis Gomez")
	assert.NotContains(t, text, "Old Visit")

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Contains(t, b.bearers, "Bearer opaque-token")
}

func TestCompleteAndCancel(t *testing.T) {
	a, b, out := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"login", "marta@clinic.test", "secret"}))
	out.Reset()

	require.NoError(t, a.run(ctx, []string{"complete", "2"}))
	assert.Equal(t, "turn 2 Luis Gomez COMPLETED\n", out.String())

	err := a.run(ctx, []string{"complete", "1"})
	assert.ErrorContains(t, err, "cannot complete turn 1")

	require.NoError(t, a.run(ctx, []string{"cancel", "1"}))
	assert.Equal(t, []string{"/api/turns/2/complete", "/api/turns/1/cancel"}, b.patched)

	assert.ErrorContains(t, a.run(ctx, []string{"cancel", "abc"}), "invalid turn id")
}

func TestUsage(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.ErrorIs(t, a.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), []string{"login", "a@b.test", "pw", "extra"}), errUsage)
}

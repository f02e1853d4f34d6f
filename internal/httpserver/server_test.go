package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/atal/internal/config"
	"github.com/MrSnakeDoc/atal/internal/connectivity"
	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/atal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
	"github.com/MrSnakeDoc/atal/internal/logger"
	"github.com/MrSnakeDoc/atal/internal/retry"
	"github.com/MrSnakeDoc/atal/internal/store/local"
	redisstore "github.com/MrSnakeDoc/atal/internal/store/redis"
)

func newTestHandler(t *testing.T, mutate func(*deps.Deps)) http.Handler {
	t.Helper()

	log := logger.NewNop()
	store := local.NewService(local.NewMemoryBlobs())
	prober := connectivity.NewProber(nil, time.Minute, log)
	return newHandlerWithData(t, hybrid.New(nil, store, prober, retry.DefaultPolicy(), log), mutate)
}

func newHandlerWithData(t *testing.T, data *hybrid.Service, mutate func(*deps.Deps)) http.Handler {
	t.Helper()

	log := logger.NewNop()
	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Version:         "test",
		TimeNow:         time.Now,
		RateLimitBurst:  100,
		RateLimitRefill: 100,
		Data:            data,
	}
	if mutate != nil {
		mutate(&d)
	}

	cfg := &config.Config{
		ListenPort:     ":0",
		RetryAttempts:  1,
		RetryTimeout:   time.Second,
		RetryBaseDelay: time.Millisecond,
	}
	return New(cfg, log, d).http.Handler
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	ready := decode[map[string]any](t, rec)
	assert.Equal(t, true, ready["ready"])
	assert.Equal(t, "local-only", ready["mode"])
}

func TestComponentRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/components", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local", rec.Header().Get(handlers.SourceHeader))
	assert.Len(t, decode[[]domain.Component](t, rec), 15, "empty store is seeded with defaults")

	rec = do(t, h, http.MethodPost, "/api/components", domain.ComponentInput{
		Name:        "Hall Sensor",
		Description: "Detects magnetic fields",
		Category:    "sensors",
		PriceRange:  "$1-5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Component](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.DefaultAvailability, created.Availability)

	rec = do(t, h, http.MethodGet, "/api/components?category=sensors&search=hall", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]domain.Component](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)

	rec = do(t, h, http.MethodPut, "/api/components/"+created.ID, domain.ComponentInput{
		Name:        "Hall Effect Sensor",
		Description: "Detects magnetic fields",
		Category:    "sensors",
		PriceRange:  "$1-5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Hall Effect Sensor", decode[domain.Component](t, rec).Name)

	rec = do(t, h, http.MethodDelete, "/api/components/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/components/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComponentValidation(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/components", domain.ComponentInput{Name: "missing fields"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/components", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMissingComponentWhileRedisDown(t *testing.T) {
	log := logger.NewNop()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	// The prober still believes Redis is up, so the call reaches it and fails.
	up := connectivity.CheckerFunc(func(context.Context) bool { return true })
	prober := connectivity.NewProber(up, time.Minute, log)
	data := hybrid.New(redisstore.NewStore(client), local.NewService(local.NewMemoryBlobs()), prober,
		retry.Policy{MaxAttempts: 1, Timeout: time.Second}, log)
	h := newHandlerWithData(t, data, nil)

	rec := do(t, h, http.MethodGet, "/api/components/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.False(t, data.ConnectionStatus().Online, "failed remote call marks the store offline")
}

func TestProjectRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/projects", domain.Project{
		Title:  "Plant monitor",
		Status: domain.StatusSaved,
		UserID: "u1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved := decode[domain.Project](t, rec)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.DateSaved.IsZero())

	rec = do(t, h, http.MethodGet, "/api/projects/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Plant monitor", decode[domain.Project](t, rec).Title)

	status := domain.StatusInProgress
	rec = do(t, h, http.MethodPatch, "/api/projects/"+saved.ID, domain.ProjectPatch{Status: &status})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusInProgress, decode[domain.Project](t, rec).Status)

	bad := domain.ProjectStatus("archived")
	rec = do(t, h, http.MethodPatch, "/api/projects/"+saved.ID, domain.ProjectPatch{Status: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/projects?user_id=u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Project](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/projects?user_id=someone-else", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Project](t, rec))

	rec = do(t, h, http.MethodDelete, "/api/projects/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/projects/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/projects/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/users/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users/ensure", domain.User{ID: "u1", Name: "Ada"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[domain.User](t, rec)

	rec = do(t, h, http.MethodPost, "/api/users/ensure", domain.User{ID: "u1", Name: "Someone else"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decode[domain.User](t, rec).Name, "ensure keeps the existing user")

	name := "Ada L."
	rec = do(t, h, http.MethodPatch, "/api/users/u1", domain.UserPatch{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.User](t, rec)
	assert.Equal(t, name, updated.Name)
	assert.True(t, first.CreatedAt.Equal(updated.CreatedAt))

	rec = do(t, h, http.MethodPost, "/api/users", domain.User{ID: "u2", Name: "Grace"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grace", decode[domain.User](t, rec).Name)
}

func TestGenerateIdeas(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/api/ideas/generate", domain.GenerateRequest{Skill: "beginner"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "local", rec.Header().Get(handlers.SourceHeader))
	assert.NotEmpty(t, decode[[]domain.ProjectIdea](t, rec))
}

func TestStatusRoutes(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.Equal(t, "local-only", st["mode"])
	assert.Equal(t, false, st["online"])
	assert.Equal(t, false, st["remote_configured"])

	rec = do(t, h, http.MethodPost, "/api/status/probe", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/init", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"seeded": true}, decode[map[string]bool](t, rec))

	rec = do(t, h, http.MethodPost, "/api/init", nil)
	assert.Equal(t, map[string]bool{"seeded": false}, decode[map[string]bool](t, rec))
}

func TestAdminRoutesRestrictedByCIDR(t *testing.T) {
	h := newTestHandler(t, func(d *deps.Deps) { d.AllowedCIDRS = []string{"10.0.0.0/8"} })

	// httptest requests come from 192.0.2.1.
	rec := do(t, h, http.MethodPost, "/api/status/probe", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteRoutesRateLimited(t *testing.T) {
	h := newTestHandler(t, func(d *deps.Deps) {
		d.RateLimitBurst = 1
		d.RateLimitRefill = 1
	})

	user := domain.User{ID: "u1", Name: "Ada"}
	rec := do(t, h, http.MethodPost, "/api/users", user)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users", user)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Each route family has its own buckets.
	rec = do(t, h, http.MethodPost, "/api/projects", domain.Project{Title: "Plant monitor", UserID: "u1"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Reads are not limited.
	rec = do(t, h, http.MethodGet, "/api/users/u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestTimeoutCoversRetries(t *testing.T) {
	cfg := &config.Config{RetryAttempts: 3, RetryTimeout: 10 * time.Second, RetryBaseDelay: time.Second}
	// 3 attempts of 10s, backoff of 1s and 2s, plus 5s for the local store.
	assert.Equal(t, 38*time.Second, requestTimeout(cfg))
}

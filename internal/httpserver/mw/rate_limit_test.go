package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateLimitPerClient(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := RateLimit(RateLimitConfig{
		Name:              "projects",
		Burst:             2,
		RefillPerIPPerMin: 60,
		Logger:            logger.FromZap(zap.New(core)),
		Now:               clock.now,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) }))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("198.51.100.7:4000"); rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i+1, rec.Code)
		}
	}

	rec := send("198.51.100.7:4001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %q, want JSON error", rec.Body.String())
	}

	if rec := send("203.0.113.9:5000"); rec.Code != http.StatusCreated {
		t.Errorf("other client: status = %d, want 201", rec.Code)
	}

	entries := logs.FilterMessage("write rate limit exceeded").All()
	if len(entries) != 1 {
		t.Fatalf("got %d throttle log lines, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["routes"]; got != "projects" {
		t.Errorf("routes field = %v, want projects", got)
	}

	clock.t = clock.t.Add(time.Second)
	if rec := send("198.51.100.7:4002"); rec.Code != http.StatusCreated {
		t.Errorf("after refill: status = %d, want 201", rec.Code)
	}
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, IdleTTL: time.Minute, SweepInterval: time.Minute, Now: func() time.Time { return start }})

	l.take("192.0.2.1", start)
	l.take("192.0.2.2", start.Add(90*time.Second))

	if _, ok := l.clients["192.0.2.1"]; ok {
		t.Error("idle client was not swept")
	}
	if _, ok := l.clients["192.0.2.2"]; !ok {
		t.Error("active client was swept")
	}
}

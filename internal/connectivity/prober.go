// Package connectivity decides whether the remote store is worth calling.
//
// A Prober memoizes the result of a reachability check for a fixed interval,
// so a burst of requests costs at most one network round trip.
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

// DefaultInterval is how long a check result is trusted.
const DefaultInterval = 60 * time.Second

const memoKey = "remote_online"

// Checker performs one real reachability check.
type Checker interface {
	CheckConnection(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

func (f CheckerFunc) CheckConnection(ctx context.Context) bool { return f(ctx) }

// Status is a snapshot of the prober state.
type Status struct {
	Online      bool      `json:"online"`
	LastChecked time.Time `json:"last_checked"`
	Checks      int64     `json:"checks"`
}

// Prober memoizes the remote reachability flag.
type Prober struct {
	checker  Checker
	interval time.Duration
	logger   logger.Logger

	mu        sync.Mutex
	memo      *gocache.Cache
	online    bool
	lastCheck time.Time
	checks    atomic.Int64
}

// NewProber creates a prober. The flag starts optimistic (online) and the
// first Probe performs a real check.
func NewProber(checker Checker, interval time.Duration, log logger.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Prober{
		checker:  checker,
		interval: interval,
		logger:   log,
		memo:     gocache.New(interval, 2*interval),
		online:   true,
	}
}

// Probe returns the memoized flag, or checks the remote when the memo expired.
// It never fails: a failing check reports false.
func (p *Prober) Probe(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.memo.Get(memoKey); ok {
		return v.(bool)
	}
	return p.checkLocked(ctx)
}

// ForceProbe discards the memo and checks immediately.
func (p *Prober) ForceProbe(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.memo.Delete(memoKey)
	return p.checkLocked(ctx)
}

// MarkOffline demotes the flag to false until the current interval ends.
func (p *Prober) MarkOffline() {
	p.mu.Lock()
	defer p.mu.Unlock()

	ttl := p.interval
	if _, exp, ok := p.memo.GetWithExpiration(memoKey); ok {
		if remaining := time.Until(exp); remaining > 0 {
			ttl = remaining
		}
	} else {
		p.lastCheck = time.Now()
	}

	if p.online {
		p.logger.Warn("remote store marked offline",
			logger.Duration("until_next_probe", ttl))
	}
	p.online = false
	p.memo.Set(memoKey, false, ttl)
}

// Status reports the last known flag and when it was last checked.
func (p *Prober) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	online := p.online
	if v, ok := p.memo.Get(memoKey); ok {
		online = v.(bool)
	}
	return Status{
		Online:      online,
		LastChecked: p.lastCheck,
		Checks:      p.checks.Load(),
	}
}

// Checks returns how many real reachability checks were made.
func (p *Prober) Checks() int64 {
	return p.checks.Load()
}

// Interval returns the memo lifetime.
func (p *Prober) Interval() time.Duration {
	return p.interval
}

func (p *Prober) checkLocked(ctx context.Context) bool {
	online := p.safeCheck(ctx)
	p.checks.Add(1)
	p.lastCheck = time.Now()

	if online != p.online {
		p.logger.Info("remote store connectivity changed",
			logger.Bool("online", online))
	} else {
		p.logger.Debug("remote store connectivity checked",
			logger.Bool("online", online))
	}

	p.online = online
	p.memo.Set(memoKey, online, gocache.DefaultExpiration)
	return online
}

func (p *Prober) safeCheck(ctx context.Context) (online bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("connectivity check panicked, assuming offline",
				logger.String("panic", toString(r)))
			online = false
		}
	}()
	if p.checker == nil {
		return false
	}
	return p.checker.CheckConnection(ctx)
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	default:
		return "unknown panic"
	}
}

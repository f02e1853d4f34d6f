package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

// Probe reports whether the remote store is reachable.
type Probe interface {
	Probe(ctx context.Context) bool
}

// ConnectivityWatcher probes the remote store on a fixed interval and logs
// online/offline transitions.
type ConnectivityWatcher struct {
	probe    Probe
	logger   logger.Logger
	interval time.Duration
	onChange func(ctx context.Context, online bool)

	mu       sync.Mutex
	known    bool
	online   bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewConnectivityWatcher creates a watcher. onChange may be nil; it runs on
// the watcher goroutine after every transition, including the first check.
func NewConnectivityWatcher(
	probe Probe,
	log logger.Logger,
	interval time.Duration,
	onChange func(ctx context.Context, online bool),
) *ConnectivityWatcher {
	return &ConnectivityWatcher{
		probe:    probe,
		logger:   log,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start checks once, then keeps checking every interval until Stop or ctx ends.
func (w *ConnectivityWatcher) Start(ctx context.Context) error {
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Check(ctx)
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *ConnectivityWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Check probes once and returns the result.
func (w *ConnectivityWatcher) Check(ctx context.Context) bool {
	online := w.probe.Probe(ctx)

	w.mu.Lock()
	changed := !w.known || online != w.online
	w.known = true
	w.online = online
	w.mu.Unlock()

	if !changed {
		return online
	}

	if online {
		w.logger.Info("remote store online")
	} else {
		w.logger.Warn("remote store offline, serving from local store",
			logger.Duration("next_check_in", w.interval))
	}
	if w.onChange != nil {
		w.onChange(ctx, online)
	}
	return online
}

// Online returns the last observed state.
func (w *ConnectivityWatcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

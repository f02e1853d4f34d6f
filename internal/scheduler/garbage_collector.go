package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

// DefaultGCInterval is how often the remote indexes are swept.
const DefaultGCInterval = time.Hour

// IndexPruner drops index entries that point at missing documents.
type IndexPruner interface {
	PruneIndex(ctx context.Context, collection string) (int, error)
}

// GarbageCollector periodically removes dangling entries from the remote
// collection indexes. Sweeps are skipped while the remote store is offline.
type GarbageCollector struct {
	store       IndexPruner
	probe       Probe
	collections []string
	logger      logger.Logger
	interval    time.Duration
	stopCh      chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	store IndexPruner,
	probe Probe,
	collections []string,
	log logger.Logger,
	interval time.Duration,
) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}

	return &GarbageCollector{
		store:       store,
		probe:       probe,
		collections: collections,
		logger:      log,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect sweeps every collection once and returns how many index entries
// were removed. It stops at the first failing collection.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	if gc.probe != nil && !gc.probe.Probe(ctx) {
		gc.logger.Debug("remote store offline, skipping garbage collection")
		return 0, nil
	}

	total := 0
	for _, collection := range gc.collections {
		n, err := gc.store.PruneIndex(ctx, collection)
		if err != nil {
			return total, err
		}
		if n > 0 {
			gc.logger.Info("garbage collected dangling index entries",
				logger.String("collection", collection),
				logger.Int("removed", n))
		}
		total += n
	}

	if total == 0 {
		gc.logger.Debug("no items to garbage collect")
	}
	return total, nil
}

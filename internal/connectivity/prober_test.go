package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/atal/internal/logger"
)

type fakeChecker struct {
	mu     sync.Mutex
	online bool
	calls  int
}

func (f *fakeChecker) CheckConnection(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.online
}

func (f *fakeChecker) set(online bool) {
	f.mu.Lock()
	f.online = online
	f.mu.Unlock()
}

func TestProbeMemoizesWithinInterval(t *testing.T) {
	fc := &fakeChecker{online: true}
	p := NewProber(fc, time.Minute, logger.NewNop())

	for i := 0; i < 10; i++ {
		if !p.Probe(context.Background()) {
			t.Fatalf("Probe() #%d = false, want true", i)
		}
	}
	if fc.calls != 1 {
		t.Errorf("checker called %d times, want 1", fc.calls)
	}
	if p.Checks() != 1 {
		t.Errorf("Checks() = %d, want 1", p.Checks())
	}
}

func TestProbeConcurrentCallersShareOneCheck(t *testing.T) {
	fc := &fakeChecker{online: true}
	p := NewProber(fc, time.Minute, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Probe(context.Background())
		}()
	}
	wg.Wait()

	if p.Checks() != 1 {
		t.Errorf("Checks() = %d, want 1", p.Checks())
	}
}

func TestProbeRechecksAfterExpiry(t *testing.T) {
	fc := &fakeChecker{online: true}
	p := NewProber(fc, 20*time.Millisecond, logger.NewNop())

	if !p.Probe(context.Background()) {
		t.Fatal("first Probe() = false")
	}
	fc.set(false)
	time.Sleep(40 * time.Millisecond)

	if p.Probe(context.Background()) {
		t.Error("Probe() after expiry = true, want false")
	}
	if p.Checks() != 2 {
		t.Errorf("Checks() = %d, want 2", p.Checks())
	}
}

func TestForceProbeIgnoresMemo(t *testing.T) {
	fc := &fakeChecker{online: false}
	p := NewProber(fc, time.Minute, logger.NewNop())

	if p.Probe(context.Background()) {
		t.Fatal("Probe() = true, want false")
	}
	fc.set(true)
	if p.Probe(context.Background()) {
		t.Error("memoized Probe() should still be false")
	}
	if !p.ForceProbe(context.Background()) {
		t.Error("ForceProbe() = false, want true")
	}
	if p.Checks() != 2 {
		t.Errorf("Checks() = %d, want 2", p.Checks())
	}
}

func TestMarkOfflineUntilNextWindow(t *testing.T) {
	fc := &fakeChecker{online: true}
	p := NewProber(fc, time.Minute, logger.NewNop())

	p.Probe(context.Background())
	p.MarkOffline()

	if p.Probe(context.Background()) {
		t.Error("Probe() after MarkOffline = true, want false")
	}
	if fc.calls != 1 {
		t.Errorf("checker called %d times, want 1", fc.calls)
	}
	if st := p.Status(); st.Online {
		t.Error("Status().Online = true after MarkOffline")
	}
}

func TestMarkOfflineBeforeFirstProbe(t *testing.T) {
	fc := &fakeChecker{online: true}
	p := NewProber(fc, time.Minute, logger.NewNop())

	p.MarkOffline()
	if p.Probe(context.Background()) {
		t.Error("Probe() = true, want false")
	}
	if fc.calls != 0 {
		t.Errorf("checker called %d times, want 0", fc.calls)
	}
	if p.Status().LastChecked.IsZero() {
		t.Error("LastChecked should be set by MarkOffline")
	}
}

func TestProbeRecoversFromPanic(t *testing.T) {
	p := NewProber(CheckerFunc(func(context.Context) bool {
		panic("driver exploded")
	}), time.Minute, logger.NewNop())

	if p.Probe(context.Background()) {
		t.Error("Probe() = true after panic, want false")
	}
}

func TestNilCheckerIsOffline(t *testing.T) {
	p := NewProber(nil, 0, logger.NewNop())
	if p.Probe(context.Background()) {
		t.Error("Probe() with nil checker = true")
	}
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
}

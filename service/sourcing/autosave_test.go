package sourcing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

type fakeSaver struct {
	mu      sync.Mutex
	calls   int
	lastRec *sourcingEntity.SourcingRecord
	release chan struct{} // when set, Save blocks until closed
	err     error
}

func (f *fakeSaver) Save(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) error {
	f.mu.Lock()
	f.calls++
	f.lastRec = rec
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
		f.mu.Lock()
		f.release = nil
		f.mu.Unlock()
	}
	return f.err
}

func (f *fakeSaver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeScheduler drives ticks manually so tests control virtual time.
type fakeScheduler struct {
	fn      func()
	started bool
	stopped bool
}

func (s *fakeScheduler) Start(fn func()) { s.fn = fn; s.started = true }
func (s *fakeScheduler) Stop()           { s.stopped = true }
func (s *fakeScheduler) TriggerNow() {
	if s.fn != nil {
		s.fn()
	}
}

func staticSnapshot(rec *sourcingEntity.SourcingRecord) Snapshot {
	return func() (string, *sourcingEntity.SourcingRecord) {
		return rec.WorkOrderKey, rec.Clone()
	}
}

func TestFlush_SavesSnapshot(t *testing.T) {
	saver := &fakeSaver{}
	rec := NewRecord("WO-1")
	c := NewCoordinator(saver, staticSnapshot(rec), nil)

	if err := c.Flush(context.Background(), false); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if saver.callCount() != 1 {
		t.Errorf("saves = %d, want 1", saver.callCount())
	}
	if saver.lastRec == rec {
		t.Error("saver received the live record, want a detached copy")
	}
}

func TestFlush_ConcurrentSavesCoalesce(t *testing.T) {
	saver := &fakeSaver{release: make(chan struct{})}
	rec := NewRecord("WO-1")
	c := NewCoordinator(saver, staticSnapshot(rec), nil)

	done := make(chan error, 1)
	go func() { done <- c.Flush(context.Background(), false) }()

	// Wait for the first save to be in flight.
	for saver.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// A mutation lands while the save is in flight, then a second save is
	// requested. It must be a no-op that requests one follow-up cycle.
	rec.Vendors[0].Name = "Acme"
	if err := c.Flush(context.Background(), false); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if saver.callCount() != 1 {
		t.Fatalf("second Flush started its own write, saves = %d", saver.callCount())
	}

	close(saver.release)
	if err := <-done; err != nil {
		t.Fatalf("first Flush: %v", err)
	}

	if saver.callCount() != 2 {
		t.Errorf("saves = %d, want 2 (one cycle plus one coalesced follow-up)", saver.callCount())
	}
	if saver.lastRec.Vendors[0].Name != "Acme" {
		t.Error("coalesced follow-up lost the second call's effects")
	}

	// A burst of requests while saving still coalesces into one follow-up,
	// so a third save now starts fresh.
	if err := c.Flush(context.Background(), false); err != nil {
		t.Fatalf("third Flush: %v", err)
	}
	if saver.callCount() != 3 {
		t.Errorf("saves = %d, want 3", saver.callCount())
	}
}

func TestFlush_SilentSwallowsError(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk gone")}
	c := NewCoordinator(saver, staticSnapshot(NewRecord("WO-1")), nil)

	if err := c.Flush(context.Background(), true); err != nil {
		t.Errorf("silent Flush surfaced error: %v", err)
	}
	if err := c.Flush(context.Background(), false); err == nil {
		t.Error("interactive Flush swallowed error")
	}
}

func TestScheduler_DrivesSilentSaves(t *testing.T) {
	saver := &fakeSaver{err: errors.New("transient")}
	sched := &fakeScheduler{}
	c := NewCoordinator(saver, staticSnapshot(NewRecord("WO-1")), sched)

	c.Enable()
	if !sched.started {
		t.Fatal("Enable did not start the scheduler")
	}

	// Timer ticks are silent: failures logged, never surfaced or retried
	// until the next tick.
	sched.TriggerNow()
	sched.TriggerNow()
	if saver.callCount() != 2 {
		t.Errorf("saves = %d, want 2", saver.callCount())
	}

	c.Disable()
	if !sched.stopped {
		t.Error("Disable did not stop the scheduler")
	}
}

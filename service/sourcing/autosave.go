package sourcing

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// RecordSaver is the persistence slice of the record store the
// coordinator needs.
type RecordSaver interface {
	Save(ctx context.Context, key string, rec *sourcingEntity.SourcingRecord) error
}

// Snapshot returns the key and a detached copy of the working record at
// flush time. Taking a copy keeps mutations from racing an in-flight
// write.
type Snapshot func() (string, *sourcingEntity.SourcingRecord)

// Scheduler owns the periodic save trigger. Injected so tests can drive
// ticks deterministically instead of waiting on wall-clock time.
type Scheduler interface {
	Start(fn func())
	Stop()
	TriggerNow()
}

// CronScheduler fires the autosave trigger at a fixed interval.
type CronScheduler struct {
	interval time.Duration
	c        *cron.Cron
	fn       func()
}

func NewCronScheduler(interval time.Duration) *CronScheduler {
	return &CronScheduler{interval: interval}
}

func (s *CronScheduler) Start(fn func()) {
	s.fn = fn
	s.c = cron.New()
	if _, err := s.c.AddFunc(fmt.Sprintf("@every %s", s.interval), fn); err != nil {
		log.Printf("autosave schedule: %v", err)
		return
	}
	s.c.Start()
}

func (s *CronScheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

func (s *CronScheduler) TriggerNow() {
	if s.fn != nil {
		s.fn()
	}
}

// Coordinator serializes saves for one record: at most one write cycle in
// flight, with bursts coalesced into a single follow-up save instead of a
// queue. Timer ticks and user-triggered saves share the same gate.
type Coordinator struct {
	saver    RecordSaver
	snapshot Snapshot
	sched    Scheduler

	mu        sync.Mutex
	saving    bool
	requested bool
}

func NewCoordinator(saver RecordSaver, snapshot Snapshot, sched Scheduler) *Coordinator {
	return &Coordinator{saver: saver, snapshot: snapshot, sched: sched}
}

// Enable starts the periodic silent-save timer.
func (c *Coordinator) Enable() {
	if c.sched == nil {
		return
	}
	c.sched.Start(func() {
		_ = c.Flush(context.Background(), true)
	})
}

// Disable stops the timer. In-flight saves run to completion; nothing is
// cancellable mid-write.
func (c *Coordinator) Disable() {
	if c.sched != nil {
		c.sched.Stop()
	}
}

// Flush persists the current working copy. If a save is already in
// flight the call is a no-op that requests one follow-up save, so the
// caller's changes are captured by the coalesced cycle rather than lost.
// Silent flushes log failures; interactive ones return them for retry.
func (c *Coordinator) Flush(ctx context.Context, silent bool) error {
	c.mu.Lock()
	if c.saving {
		c.requested = true
		c.mu.Unlock()
		return nil
	}
	c.saving = true
	c.mu.Unlock()

	var err error
	for {
		key, rec := c.snapshot()
		err = c.saver.Save(ctx, key, rec)

		c.mu.Lock()
		if !c.requested {
			c.saving = false
			c.mu.Unlock()
			break
		}
		c.requested = false
		c.mu.Unlock()
	}

	if err != nil && silent {
		log.Printf("autosave failed: %v", err)
		return nil
	}
	return err
}

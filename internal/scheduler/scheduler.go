// Package scheduler drives queue finalization. Every PENDING item gets an
// in-process timer; a boot rescan restores timers lost to a restart and a
// periodic sweep re-arms anything that slipped through. Finalization itself
// is idempotent, so firing twice is harmless.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"astraxis-server/internal/queue"
)

// Finalizer applies a due queue item. Must absorb duplicate and early calls.
type Finalizer interface {
	Finalize(ctx context.Context, itemID string) error
}

// Source lists the items that still need a timer.
type Source interface {
	PendingItems(ctx context.Context) ([]queue.Item, error)
}

const finalizeTimeout = 30 * time.Second

type Scheduler struct {
	finalizer     Finalizer
	source        Source
	sweepInterval time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	stop   chan struct{}
	done   chan struct{}
}

func New(finalizer Finalizer, source Source, sweepInterval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		finalizer:     finalizer,
		source:        source,
		sweepInterval: sweepInterval,
		logger:        logger,
		timers:        make(map[string]*time.Timer),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start rescans pending items and launches the periodic sweep. Items whose
// end time passed while the server was down fire immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.rescan(ctx); err != nil {
		return err
	}
	go s.sweepLoop()
	return nil
}

// Stop halts the sweep and cancels all armed timers. In-flight finalizations
// run to completion.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Schedule arms a timer for one item. Re-scheduling an already armed id
// replaces the old timer instead of adding a second one.
func (s *Scheduler) Schedule(itemID string, runAt time.Time) {
	delay := time.Until(runAt)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[itemID]; ok {
		timer.Stop()
	}
	s.timers[itemID] = time.AfterFunc(delay, func() {
		s.fire(itemID)
	})
}

func (s *Scheduler) fire(itemID string) {
	s.mu.Lock()
	delete(s.timers, itemID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if err := s.finalizer.Finalize(ctx, itemID); err != nil {
		// The sweep will pick the item up again as long as it stays PENDING.
		s.logger.Error("Failed to finalize queue item", "error", err, "item_id", itemID)
	}
}

func (s *Scheduler) rescan(ctx context.Context) error {
	items, err := s.source.PendingItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		s.Schedule(item.ID, item.EndAt)
	}
	if len(items) > 0 {
		s.logger.Info("Rescheduled pending queue items", "count", len(items))
	}
	return nil
}

func (s *Scheduler) sweepLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
			if err := s.rescan(ctx); err != nil {
				s.logger.Error("Scheduler sweep failed", "error", err)
			}
			cancel()
		}
	}
}

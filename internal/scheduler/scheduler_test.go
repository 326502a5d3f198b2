package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"astraxis-server/internal/queue"
)

type recordingFinalizer struct {
	mu    sync.Mutex
	calls []string
	fired chan string
}

func newRecordingFinalizer() *recordingFinalizer {
	return &recordingFinalizer{fired: make(chan string, 16)}
}

func (f *recordingFinalizer) Finalize(_ context.Context, itemID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, itemID)
	f.mu.Unlock()
	f.fired <- itemID
	return nil
}

func (f *recordingFinalizer) callCount(itemID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, id := range f.calls {
		if id == itemID {
			count++
		}
	}
	return count
}

type staticSource struct {
	items []queue.Item
}

func (s *staticSource) PendingItems(context.Context) ([]queue.Item, error) {
	return s.items, nil
}

func waitForFire(t *testing.T, f *recordingFinalizer, want string) {
	t.Helper()
	select {
	case got := <-f.fired:
		if got != want {
			t.Fatalf("finalized %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q to finalize", want)
	}
}

func TestSchedulePastDueFiresImmediately(t *testing.T) {
	finalizer := newRecordingFinalizer()
	s := New(finalizer, &staticSource{}, time.Hour, slog.Default())

	s.Schedule("item-1", time.Now().Add(-time.Minute))
	waitForFire(t, finalizer, "item-1")
}

func TestScheduleIsIdempotentPerID(t *testing.T) {
	finalizer := newRecordingFinalizer()
	s := New(finalizer, &staticSource{}, time.Hour, slog.Default())

	// Re-registering the same id must replace the timer, not stack a second
	// firing behind it.
	runAt := time.Now().Add(50 * time.Millisecond)
	s.Schedule("item-1", runAt)
	s.Schedule("item-1", runAt)
	s.Schedule("item-1", runAt)

	waitForFire(t, finalizer, "item-1")
	time.Sleep(200 * time.Millisecond)
	if got := finalizer.callCount("item-1"); got != 1 {
		t.Fatalf("expected exactly one finalization, got %d", got)
	}
}

func TestStartRescansPendingItems(t *testing.T) {
	finalizer := newRecordingFinalizer()
	source := &staticSource{items: []queue.Item{
		{ID: "overdue", EndAt: time.Now().Add(-time.Hour)},
		{ID: "future", EndAt: time.Now().Add(time.Hour)},
	}}
	s := New(finalizer, source, time.Hour, slog.Default())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	waitForFire(t, finalizer, "overdue")
	if got := finalizer.callCount("future"); got != 0 {
		t.Fatalf("future item fired early, %d calls", got)
	}
}

func TestStopCancelsArmedTimers(t *testing.T) {
	finalizer := newRecordingFinalizer()
	s := New(finalizer, &staticSource{}, time.Hour, slog.Default())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	s.Schedule("item-1", time.Now().Add(time.Hour))
	s.Stop()

	if got := finalizer.callCount("item-1"); got != 0 {
		t.Fatalf("stopped scheduler still fired, %d calls", got)
	}
}

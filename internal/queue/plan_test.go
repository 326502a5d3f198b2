package queue

import (
	"testing"
	"time"

	"astraxis-server/internal/shared/config"
	apperrors "astraxis-server/internal/shared/errors"
)

var planNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func pendingItem(key string, endAt time.Time) Item {
	return Item{Key: key, EndAt: endAt, Status: StatusPending}
}

func TestPlanStartIdleScopeStartsNow(t *testing.T) {
	for _, policy := range []config.QueuePolicy{config.QueuePolicyExclusive, config.QueuePolicyStacking} {
		startAt, err := planStart(policy, nil, planNow, TypeBuilding)
		if err != nil {
			t.Fatalf("policy %s: unexpected error: %v", policy, err)
		}
		if !startAt.Equal(planNow) {
			t.Fatalf("policy %s: idle scope should start immediately, got %v", policy, startAt)
		}
	}
}

func TestPlanStartExclusiveRejectsBusyScope(t *testing.T) {
	pending := []Item{pendingItem("metal_mine", planNow.Add(time.Minute))}

	_, err := planStart(config.QueuePolicyExclusive, pending, planNow, TypeBuilding)
	if err == nil {
		t.Fatal("expected a conflict for a busy exclusive scope")
	}
	if apperrors.GetType(err) != apperrors.ErrorTypeConflict {
		t.Fatalf("expected conflict error type, got %s", apperrors.GetType(err))
	}
}

func TestPlanStartStackingChainsBehindTail(t *testing.T) {
	tail := planNow.Add(5 * time.Minute)
	pending := []Item{
		pendingItem("metal_mine", planNow.Add(time.Minute)),
		pendingItem("crystal_mine", tail),
	}

	startAt, err := planStart(config.QueuePolicyStacking, pending, planNow, TypeBuilding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !startAt.Equal(tail) {
		t.Fatalf("stacked item should start when the tail ends, got %v want %v", startAt, tail)
	}
}

func TestPlanStartStackingPastTailStartsNow(t *testing.T) {
	// A stale tail whose end time already passed (finalization lagging) must
	// not push the new item into the past.
	pending := []Item{pendingItem("metal_mine", planNow.Add(-time.Minute))}

	startAt, err := planStart(config.QueuePolicyStacking, pending, planNow, TypeBuilding)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !startAt.Equal(planNow) {
		t.Fatalf("expected start at now, got %v", startAt)
	}
}

func TestTargetLevelCountsStackedSameKey(t *testing.T) {
	pending := []Item{
		pendingItem("metal_mine", planNow.Add(time.Minute)),
		pendingItem("crystal_mine", planNow.Add(2*time.Minute)),
		pendingItem("metal_mine", planNow.Add(3*time.Minute)),
	}

	if got := targetLevel(4, pending, "metal_mine"); got != 7 {
		t.Fatalf("two stacked metal mine upgrades on level 4 should target 7, got %d", got)
	}
	if got := targetLevel(4, pending, "deuterium_synthesizer"); got != 5 {
		t.Fatalf("unrelated keys should not affect the target, got %d", got)
	}
	if got := targetLevel(0, nil, "metal_mine"); got != 1 {
		t.Fatalf("empty scope on level 0 should target 1, got %d", got)
	}
}

func TestFinalizeDueGuard(t *testing.T) {
	due := &Item{Status: StatusPending, EndAt: planNow.Add(-time.Second)}
	if !finalizeDue(due, planNow) {
		t.Fatal("a pending item past its end time is due")
	}
	if !finalizeDue(&Item{Status: StatusPending, EndAt: planNow}, planNow) {
		t.Fatal("an item ending exactly now is due")
	}

	if finalizeDue(nil, planNow) {
		t.Fatal("a missing item must be a no-op")
	}
	if finalizeDue(&Item{Status: StatusDone, EndAt: planNow.Add(-time.Hour)}, planNow) {
		t.Fatal("an already finalized item must be a no-op")
	}
	if finalizeDue(&Item{Status: StatusPending, EndAt: planNow.Add(time.Second)}, planNow) {
		t.Fatal("an early wakeup must be a no-op")
	}
}

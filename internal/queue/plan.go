package queue

import (
	"time"

	"astraxis-server/internal/shared/config"
	apperrors "astraxis-server/internal/shared/errors"
)

// planStart decides whether a new item may enter a scope and where it starts,
// given the scope's current PENDING items ordered by end time.
//
// Under the exclusive policy a scope holds at most one PENDING item and a
// second start is rejected outright. Under the stacking policy new items chain
// behind the current tail: work begins when the last queued item finishes, or
// immediately when the scope is idle.
func planStart(policy config.QueuePolicy, pending []Item, now time.Time, itemType Type) (time.Time, error) {
	if len(pending) == 0 {
		return now, nil
	}

	switch policy {
	case config.QueuePolicyStacking:
		tail := pending[len(pending)-1].EndAt
		if tail.After(now) {
			return tail, nil
		}
		return now, nil
	default:
		return time.Time{}, apperrors.Conflictf("%s queue is busy", queueLabel(itemType))
	}
}

// targetLevel computes the level a new building or research item should aim
// for. Under stacking every PENDING item for the same key already claims one
// level, so the new item targets one past the stack, not one past the stored
// level.
func targetLevel(currentLevel int, pending []Item, key string) int {
	target := currentLevel + 1
	for _, item := range pending {
		if item.Key == key {
			target++
		}
	}
	return target
}

// finalizeDue is the idempotency guard for finalization: an item is applied
// only when it exists, is still PENDING and its end time has passed. Anything
// else is a harmless duplicate or early wakeup and must be a no-op.
func finalizeDue(item *Item, now time.Time) bool {
	if item == nil {
		return false
	}
	if item.Status != StatusPending {
		return false
	}
	return !item.EndAt.After(now)
}

func queueLabel(itemType Type) string {
	switch itemType {
	case TypeBuilding:
		return "building"
	case TypeResearch:
		return "research"
	case TypeShip:
		return "shipyard"
	default:
		return "unknown"
	}
}

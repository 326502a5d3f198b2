package ledger

import (
	"testing"
	"time"

	"astraxis-server/internal/economy"
)

var testCapacities = economy.Resources{Metal: 10000, Crystal: 10000, Deuterium: 10000}

func TestAccrueAddsProduction(t *testing.T) {
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(time.Hour)
	rates := economy.ProductionRates{MetalPerHour: 30, CrystalPerHour: 20, DeutPerHour: 10}

	next, changed := Accrue(economy.Resources{Metal: 100}, rates, testCapacities, last, now)
	if !changed {
		t.Fatal("expected accrual to report a change")
	}
	if next.Metal != 130 || next.Crystal != 20 || next.Deuterium != 10 {
		t.Fatalf("unexpected accrued balance: %+v", next)
	}
}

func TestAccrueNoTimeAdvanceIsNoop(t *testing.T) {
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rates := economy.ProductionRates{MetalPerHour: 3600}
	current := economy.Resources{Metal: 500}

	if _, changed := Accrue(current, rates, testCapacities, last, last); changed {
		t.Fatal("same timestamp must not change the balance")
	}
	if _, changed := Accrue(current, rates, testCapacities, last, last.Add(-time.Minute)); changed {
		t.Fatal("clock skew into the past must not change the balance")
	}
}

func TestAccrueMonotonicUnderRepeatedCalls(t *testing.T) {
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rates := economy.ProductionRates{MetalPerHour: 123.4, CrystalPerHour: 55.5, DeutPerHour: 7.7}
	balance := economy.Resources{Metal: 10, Crystal: 10, Deuterium: 10}

	now := last
	for i := 0; i < 50; i++ {
		now = now.Add(time.Duration(i) * time.Minute) // non-decreasing, sometimes zero
		next, changed := Accrue(balance, rates, testCapacities, last, now)
		if changed {
			last = now
		}
		if next.Metal < balance.Metal || next.Crystal < balance.Crystal || next.Deuterium < balance.Deuterium {
			t.Fatalf("balance decreased on step %d: %+v -> %+v", i, balance, next)
		}
		if next.Metal > testCapacities.Metal || next.Crystal > testCapacities.Crystal || next.Deuterium > testCapacities.Deuterium {
			t.Fatalf("balance exceeded capacity on step %d: %+v", i, next)
		}
		balance = next
	}
}

func TestAccrueClampsToCapacityPerResource(t *testing.T) {
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(100 * time.Hour)
	rates := economy.ProductionRates{MetalPerHour: 1000, CrystalPerHour: 1, DeutPerHour: 0}

	next, _ := Accrue(economy.Resources{}, rates, testCapacities, last, now)
	if next.Metal != testCapacities.Metal {
		t.Fatalf("metal should clamp at capacity, got %v", next.Metal)
	}
	if next.Crystal != 100 {
		t.Fatalf("crystal should accrue freely below capacity, got %v", next.Crystal)
	}
	if next.Deuterium != 0 {
		t.Fatalf("deuterium should stay at zero, got %v", next.Deuterium)
	}
}

func TestAccrueNeverReducesOverfullBalance(t *testing.T) {
	// A balance can sit above capacity after a storage downgrade path or
	// seeded data; accrual must not confiscate the surplus.
	last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(time.Hour)
	rates := economy.ProductionRates{MetalPerHour: 100}
	overfull := economy.Resources{Metal: 20000}

	next, _ := Accrue(overfull, rates, testCapacities, last, now)
	if next.Metal != 20000 {
		t.Fatalf("overfull balance must be preserved, got %v", next.Metal)
	}
}

package economy

import (
	"math"
	"testing"
	"time"
)

func TestBuildingCostBaseLevel(t *testing.T) {
	cost := BuildingCost(BuildingMetalMine, 1)
	if cost.Metal != 60 || cost.Crystal != 15 || cost.Deuterium != 0 {
		t.Fatalf("expected {60 15 0}, got %+v", cost)
	}
}

func TestBuildingCostGrowth(t *testing.T) {
	// 60 * 1.5^2 = 135
	cost := BuildingCost(BuildingMetalMine, 3)
	if cost.Metal != 135 {
		t.Fatalf("expected metal cost 135 at level 3, got %v", cost.Metal)
	}
}

func TestCostStrictlyIncreasesPerLevel(t *testing.T) {
	for _, key := range BuildingKeys() {
		for level := 1; level < 10; level++ {
			lower := BuildingCost(key, level)
			higher := BuildingCost(key, level+1)
			if higher.Metal < lower.Metal || higher.Crystal < lower.Crystal || higher.Deuterium < lower.Deuterium {
				t.Fatalf("%s: cost decreased from level %d to %d", key, level, level+1)
			}
			if higher == lower {
				t.Fatalf("%s: cost flat from level %d to %d", key, level, level+1)
			}
		}
	}
	for _, key := range ResearchKeys() {
		lower := ResearchCost(key, 1)
		higher := ResearchCost(key, 2)
		sum := func(r Resources) float64 { return r.Metal + r.Crystal + r.Deuterium }
		if sum(higher) <= sum(lower) {
			t.Fatalf("%s: research cost not growing", key)
		}
	}
}

func TestShipCostIsLinear(t *testing.T) {
	one := ShipCost(ShipLightFighter, 1)
	five := ShipCost(ShipLightFighter, 5)
	if five.Metal != one.Metal*5 || five.Crystal != one.Crystal*5 {
		t.Fatalf("ship cost should scale linearly: one=%+v five=%+v", one, five)
	}
}

func TestBuildingTimeDecreasesWithSpeed(t *testing.T) {
	previous := time.Duration(math.MaxInt64)
	for _, speed := range []int{1, 2, 4, 8} {
		d := BuildingTime(BuildingResearchLab, 8, speed)
		if d >= previous {
			t.Fatalf("duration did not decrease at speed %d: %v >= %v", speed, d, previous)
		}
		previous = d
	}
}

func TestBuildingTimeFloor(t *testing.T) {
	if d := BuildingTime(BuildingMetalMine, 1, 1000); d != 10*time.Second {
		t.Fatalf("expected 10s floor, got %v", d)
	}
}

func TestResearchTimeLabBonus(t *testing.T) {
	without := ResearchTime(ResearchEnergy, 3, 1, 0)
	with := ResearchTime(ResearchEnergy, 3, 1, 10)
	if with >= without {
		t.Fatalf("lab level should shorten research: %v >= %v", with, without)
	}
}

func TestShipBuildTimeFloor(t *testing.T) {
	if d := ShipBuildTime(ShipProbe, 1, 100, 20, 20); d != 5*time.Second {
		t.Fatalf("expected 5s floor, got %v", d)
	}
}

func TestPositionTemperature(t *testing.T) {
	cases := []struct {
		position int
		want     int
	}{
		{1, 45},
		{8, 17},
		{15, -11},
		{0, 45},  // clamped
		{99, -11}, // clamped
	}
	for _, tc := range cases {
		if got := PositionTemperature(tc.position); got != tc.want {
			t.Fatalf("position %d: expected %d, got %d", tc.position, tc.want, got)
		}
	}
}

func TestPositionModifiers(t *testing.T) {
	innerEnergy, innerDeut := PositionModifiers(1)
	outerEnergy, outerDeut := PositionModifiers(15)
	if innerEnergy != 1.3 || innerDeut != 1 {
		t.Fatalf("unexpected inner modifiers: %v %v", innerEnergy, innerDeut)
	}
	if outerEnergy != 1 || outerDeut != 1.35 {
		t.Fatalf("unexpected outer modifiers: %v %v", outerEnergy, outerDeut)
	}
}

func TestLevelZeroProducesNothing(t *testing.T) {
	rates := ProductionFromLevels(map[BuildingKey]int{}, 8, nil)
	if rates.MetalPerHour != 0 || rates.CrystalPerHour != 0 || rates.DeutPerHour != 0 {
		t.Fatalf("expected zero production at level 0, got %+v", rates)
	}
	if rates.Energy != 0 || rates.EnergyProduced != 0 || rates.EnergyUsed != 0 {
		t.Fatalf("expected zero energy at level 0, got %+v", rates)
	}
}

func TestFullBrownoutWithoutSolarPlant(t *testing.T) {
	rates := ProductionFromLevels(map[BuildingKey]int{
		BuildingMetalMine: 3,
	}, 8, nil)
	if rates.EnergyProduced != 0 {
		t.Fatalf("expected no energy produced, got %d", rates.EnergyProduced)
	}
	if rates.EnergyUsed <= 0 {
		t.Fatalf("expected positive energy use, got %d", rates.EnergyUsed)
	}
	if rates.MetalPerHour != 0 {
		t.Fatalf("expected full brownout, got metal rate %v", rates.MetalPerHour)
	}
	if rates.Energy >= 0 {
		t.Fatalf("expected negative net energy, got %d", rates.Energy)
	}
}

func TestPartialBrownoutScalesAllRates(t *testing.T) {
	levels := map[BuildingKey]int{
		BuildingMetalMine:            5,
		BuildingCrystalMine:          5,
		BuildingDeuteriumSynthesizer: 5,
		BuildingSolarPlant:           1,
	}
	starved := ProductionFromLevels(levels, 8, nil)

	levels[BuildingSolarPlant] = 20
	powered := ProductionFromLevels(levels, 8, nil)

	if starved.MetalPerHour >= powered.MetalPerHour {
		t.Fatalf("brownout should lower metal rate: %v >= %v", starved.MetalPerHour, powered.MetalPerHour)
	}
	// Ratio must apply uniformly across resources.
	metalRatio := starved.MetalPerHour / powered.MetalPerHour
	crystalRatio := starved.CrystalPerHour / powered.CrystalPerHour
	if math.Abs(metalRatio-crystalRatio) > 1e-9 {
		t.Fatalf("brownout ratio differs per resource: %v vs %v", metalRatio, crystalRatio)
	}
}

func TestProductionFactorThrottle(t *testing.T) {
	levels := map[BuildingKey]int{
		BuildingMetalMine:  2,
		BuildingSolarPlant: 10,
	}
	full := ProductionFromLevels(levels, 8, nil)
	half := ProductionFromLevels(levels, 8, map[BuildingKey]int{BuildingMetalMine: 50})
	off := ProductionFromLevels(levels, 8, map[BuildingKey]int{BuildingMetalMine: 0})

	if math.Abs(half.MetalPerHour-full.MetalPerHour/2) > 1e-9 {
		t.Fatalf("factor 50 should halve output: %v vs %v", half.MetalPerHour, full.MetalPerHour)
	}
	if off.MetalPerHour != 0 {
		t.Fatalf("factor 0 should stop output, got %v", off.MetalPerHour)
	}
	if off.EnergyUsed != 0 {
		t.Fatalf("throttled mine should not draw energy, got %d", off.EnergyUsed)
	}
}

func TestDeutModifierFavorsOuterPositions(t *testing.T) {
	levels := map[BuildingKey]int{
		BuildingDeuteriumSynthesizer: 3,
		BuildingSolarPlant:           20,
	}
	inner := ProductionFromLevels(levels, 1, nil)
	outer := ProductionFromLevels(levels, 15, nil)
	if outer.DeutPerHour <= inner.DeutPerHour {
		t.Fatalf("outer position should synthesize more deuterium: %v <= %v", outer.DeutPerHour, inner.DeutPerHour)
	}
}

func TestStorageCapacity(t *testing.T) {
	if got := StorageCapacity(0); got != 10000 {
		t.Fatalf("expected base capacity 10000, got %v", got)
	}
	if got := StorageCapacity(1); got != 16000 {
		t.Fatalf("expected 16000 at level 1, got %v", got)
	}
	if got := StorageCapacity(2); got != 25600 {
		t.Fatalf("expected 25600 at level 2, got %v", got)
	}
}

func TestDeltaForSeconds(t *testing.T) {
	rates := ProductionRates{MetalPerHour: 3600, CrystalPerHour: 1800}
	delta := DeltaForSeconds(rates, 10)
	if delta.Metal != 10 || delta.Crystal != 5 {
		t.Fatalf("unexpected delta: %+v", delta)
	}
}

func TestEnoughAndSubtract(t *testing.T) {
	available := Resources{Metal: 1000, Crystal: 1000}
	cost := Resources{Metal: 60, Crystal: 15}
	if !Enough(available, cost) {
		t.Fatal("expected enough resources")
	}
	if Enough(Resources{Metal: 59, Crystal: 1000}, cost) {
		t.Fatal("expected insufficient metal to fail")
	}
	remaining := Subtract(available, cost)
	if remaining.Metal != 940 || remaining.Crystal != 985 {
		t.Fatalf("unexpected remainder: %+v", remaining)
	}
}

func TestKeyValidation(t *testing.T) {
	if !ValidBuildingKey(BuildingMetalMine) || ValidBuildingKey("warp_gate") {
		t.Fatal("building key validation broken")
	}
	if !ValidResearchKey(ResearchEnergy) || ValidResearchKey("alchemy") {
		t.Fatal("research key validation broken")
	}
	if !ValidShipKey(ShipProbe) || ValidShipKey("death_star") {
		t.Fatal("ship key validation broken")
	}
}

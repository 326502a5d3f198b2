// Package economy holds the pure game-balance formulas: upgrade costs,
// construction durations, hourly production rates and storage capacities.
// Nothing in this package touches storage or the clock.
package economy

import (
	"math"
	"time"
)

const (
	storageBaseCapacity = 10000
	storageFactor       = 1.6
	mineOutputFactor    = 1.1
	mineEnergyFactor    = 1.1

	minPosition = 1
	maxPosition = 15
)

// ProductionRates are the cached per-hour output rates of a planet, already
// scaled by production factors, position modifiers and energy availability.
type ProductionRates struct {
	MetalPerHour   float64 `json:"metal_per_hour"`
	CrystalPerHour float64 `json:"crystal_per_hour"`
	DeutPerHour    float64 `json:"deut_per_hour"`
	Energy         int     `json:"energy"`
	EnergyProduced int     `json:"energy_produced"`
	EnergyUsed     int     `json:"energy_used"`
}

// Cost returns the per-resource cost of reaching level, growing geometrically
// with the catalog cost factor. Level 1 costs exactly the base amount.
func Cost(base Resources, factor float64, level int) Resources {
	multiplier := math.Pow(factor, float64(max(level-1, 0)))
	return Resources{
		Metal:     math.Round(base.Metal * multiplier),
		Crystal:   math.Round(base.Crystal * multiplier),
		Deuterium: math.Round(base.Deuterium * multiplier),
	}
}

// BuildingCost returns the cost of upgrading a building to level.
func BuildingCost(key BuildingKey, level int) Resources {
	spec := buildingCatalog[key]
	return Cost(spec.Cost, spec.CostFactor, level)
}

// ResearchCost returns the cost of researching a technology to level.
func ResearchCost(key ResearchKey, level int) Resources {
	spec := researchCatalog[key]
	return Cost(spec.Cost, spec.CostFactor, level)
}

// ShipCost returns the cost of a batch of qty ships. Ship costs scale
// linearly, there is no per-unit growth.
func ShipCost(key ShipKey, qty int) Resources {
	spec := shipCatalog[key]
	return Resources{
		Metal:     spec.Cost.Metal * float64(qty),
		Crystal:   spec.Cost.Crystal * float64(qty),
		Deuterium: spec.Cost.Deuterium * float64(qty),
	}
}

// BuildingTime returns how long upgrading a building to level takes under the
// universe build speed. Never less than 10 seconds.
func BuildingTime(key BuildingKey, level, speedBuild int) time.Duration {
	spec := buildingCatalog[key]
	multiplier := math.Pow(spec.TimeFactor, float64(max(level-1, 0)))
	seconds := math.Round(spec.BaseTime * multiplier / float64(max(speedBuild, 1)))
	return time.Duration(math.Max(10, seconds)) * time.Second
}

// ResearchTime returns how long researching a technology to level takes.
// A research lab on the spending planet speeds it up 5% per lab level.
// Never less than 10 seconds.
func ResearchTime(key ResearchKey, level, speedResearch, labLevel int) time.Duration {
	spec := researchCatalog[key]
	multiplier := math.Pow(spec.TimeFactor, float64(max(level-1, 0)))
	labBonus := 1.0
	if labLevel > 0 {
		labBonus += float64(labLevel) * 0.05
	}
	seconds := math.Round(spec.BaseTime * multiplier / (float64(max(speedResearch, 1)) * labBonus))
	return time.Duration(math.Max(10, seconds)) * time.Second
}

// ShipBuildTime returns how long a batch of qty ships takes to build.
// Shipyard and robotics factory levels speed it up. Never less than 5 seconds.
func ShipBuildTime(key ShipKey, qty, speedBuild, shipyardLevel, roboticsLevel int) time.Duration {
	spec := shipCatalog[key]
	yardBonus := 1 + float64(shipyardLevel)*0.05 + float64(roboticsLevel)*0.02
	seconds := math.Round(spec.BaseTime * float64(qty) / (float64(max(speedBuild, 1)) * math.Max(yardBonus, 1)))
	return time.Duration(math.Max(5, seconds)) * time.Second
}

// PositionTemperature derives a planet's temperature from its orbital
// position: 45°C at position 1, dropping 4°C per slot outward.
func PositionTemperature(position int) int {
	return 45 - (clampPosition(position)-1)*4
}

// PositionModifiers returns the production modifiers derived from orbital
// position: solar output favours inner positions, deuterium synthesis favours
// outer ones.
func PositionModifiers(position int) (energyModifier, deutModifier float64) {
	normalized := float64(clampPosition(position)-1) / float64(maxPosition-minPosition)
	return 1 + (1-normalized)*0.3, 1 + normalized*0.35
}

// ProductionFromLevels computes the hourly production rates for the given
// building levels at an orbital position. factors maps throttle-capable
// buildings to a production factor in [0,100]; absent keys run at 100.
// When energy demand exceeds supply all extraction rates are scaled down
// proportionally (brownout).
func ProductionFromLevels(levels map[BuildingKey]int, position int, factors map[BuildingKey]int) ProductionRates {
	metalFactor := normalizeFactor(factors, BuildingMetalMine)
	crystalFactor := normalizeFactor(factors, BuildingCrystalMine)
	deutFactor := normalizeFactor(factors, BuildingDeuteriumSynthesizer)

	energyModifier, deutModifier := PositionModifiers(position)

	metal := mineOutput(30, levels[BuildingMetalMine]) * metalFactor
	crystal := mineOutput(20, levels[BuildingCrystalMine]) * crystalFactor
	deut := mineOutput(10, levels[BuildingDeuteriumSynthesizer]) * deutFactor * deutModifier

	energyUsed := mineEnergy(10, levels[BuildingMetalMine])*metalFactor +
		mineEnergy(10, levels[BuildingCrystalMine])*crystalFactor +
		mineEnergy(20, levels[BuildingDeuteriumSynthesizer])*deutFactor

	var energyProduced float64
	if solarLevel := levels[BuildingSolarPlant]; solarLevel > 0 {
		energyProduced = 20 * float64(solarLevel) * math.Pow(mineOutputFactor, float64(solarLevel)) * energyModifier
	}

	energyRatio := 1.0
	if energyUsed > 0 {
		energyRatio = math.Min(1, energyProduced/energyUsed)
	}

	return ProductionRates{
		MetalPerHour:   metal * energyRatio,
		CrystalPerHour: crystal * energyRatio,
		DeutPerHour:    deut * energyRatio,
		Energy:         int(math.Round(energyProduced - energyUsed)),
		EnergyProduced: int(math.Round(energyProduced)),
		EnergyUsed:     int(math.Round(energyUsed)),
	}
}

// StorageCapacity returns how much of a single resource a storage building at
// level can hold.
func StorageCapacity(level int) float64 {
	return math.Floor(storageBaseCapacity * math.Pow(storageFactor, float64(max(level, 0))))
}

// StorageCapacities returns the per-resource storage caps for the given
// building levels.
func StorageCapacities(levels map[BuildingKey]int) Resources {
	return Resources{
		Metal:     StorageCapacity(levels[BuildingMetalStorage]),
		Crystal:   StorageCapacity(levels[BuildingCrystalStorage]),
		Deuterium: StorageCapacity(levels[BuildingDeuteriumTank]),
	}
}

// DeltaForSeconds converts hourly rates into the amount produced over the
// given number of seconds.
func DeltaForSeconds(rates ProductionRates, seconds float64) Resources {
	hours := seconds / 3600
	return Resources{
		Metal:     rates.MetalPerHour * hours,
		Crystal:   rates.CrystalPerHour * hours,
		Deuterium: rates.DeutPerHour * hours,
	}
}

// Enough reports whether available covers cost for every resource.
func Enough(available, cost Resources) bool {
	return available.Metal >= cost.Metal &&
		available.Crystal >= cost.Crystal &&
		available.Deuterium >= cost.Deuterium
}

// Subtract returns available minus cost.
func Subtract(available, cost Resources) Resources {
	return Resources{
		Metal:     available.Metal - cost.Metal,
		Crystal:   available.Crystal - cost.Crystal,
		Deuterium: available.Deuterium - cost.Deuterium,
	}
}

// mineOutput is the raw hourly output of a mine. Level 0 produces nothing;
// the exponential term alone would otherwise yield a nonzero constant.
func mineOutput(base float64, level int) float64 {
	if level <= 0 {
		return 0
	}
	return base * float64(level) * math.Pow(mineOutputFactor, float64(level))
}

func mineEnergy(base float64, level int) float64 {
	if level <= 0 {
		return 0
	}
	return base * float64(level) * math.Pow(mineEnergyFactor, float64(level))
}

func normalizeFactor(factors map[BuildingKey]int, key BuildingKey) float64 {
	value, ok := factors[key]
	if !ok {
		return 1
	}
	return float64(min(max(value, 0), 100)) / 100
}

func clampPosition(position int) int {
	return min(max(position, minPosition), maxPosition)
}

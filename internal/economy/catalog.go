package economy

// Resources is an amount of each of the three stockpiled resources.
type Resources struct {
	Metal     float64 `json:"metal"`
	Crystal   float64 `json:"crystal"`
	Deuterium float64 `json:"deuterium"`
}

type buildingSpec struct {
	Cost       Resources
	CostFactor float64
	BaseTime   float64
	TimeFactor float64
}

type researchSpec struct {
	Cost       Resources
	CostFactor float64
	BaseTime   float64
	TimeFactor float64
}

type shipSpec struct {
	Cost     Resources
	BaseTime float64
}

var buildingCatalog = map[BuildingKey]buildingSpec{
	BuildingMetalMine: {
		Cost:       Resources{Metal: 60, Crystal: 15},
		CostFactor: 1.5,
		BaseTime:   60,
		TimeFactor: 1.5,
	},
	BuildingCrystalMine: {
		Cost:       Resources{Metal: 48, Crystal: 24},
		CostFactor: 1.6,
		BaseTime:   80,
		TimeFactor: 1.55,
	},
	BuildingDeuteriumSynthesizer: {
		Cost:       Resources{Metal: 225, Crystal: 75},
		CostFactor: 1.5,
		BaseTime:   100,
		TimeFactor: 1.6,
	},
	BuildingSolarPlant: {
		Cost:       Resources{Metal: 75, Crystal: 30},
		CostFactor: 1.5,
		BaseTime:   70,
		TimeFactor: 1.5,
	},
	BuildingMetalStorage: {
		Cost:       Resources{Metal: 1000},
		CostFactor: 2,
		BaseTime:   120,
		TimeFactor: 1.6,
	},
	BuildingCrystalStorage: {
		Cost:       Resources{Metal: 1000, Crystal: 500},
		CostFactor: 2,
		BaseTime:   140,
		TimeFactor: 1.6,
	},
	BuildingDeuteriumTank: {
		Cost:       Resources{Metal: 1000, Crystal: 1000},
		CostFactor: 2,
		BaseTime:   160,
		TimeFactor: 1.6,
	},
	BuildingRoboticsFactory: {
		Cost:       Resources{Metal: 400, Crystal: 120, Deuterium: 200},
		CostFactor: 2,
		BaseTime:   120,
		TimeFactor: 1.7,
	},
	BuildingShipyard: {
		Cost:       Resources{Metal: 400, Crystal: 200, Deuterium: 100},
		CostFactor: 2,
		BaseTime:   150,
		TimeFactor: 1.7,
	},
	BuildingResearchLab: {
		Cost:       Resources{Metal: 200, Crystal: 400, Deuterium: 200},
		CostFactor: 2,
		BaseTime:   200,
		TimeFactor: 1.8,
	},
}

var researchCatalog = map[ResearchKey]researchSpec{
	ResearchEnergy: {
		Cost:       Resources{Crystal: 800, Deuterium: 400},
		CostFactor: 2,
		BaseTime:   300,
		TimeFactor: 1.8,
	},
	ResearchLaser: {
		Cost:       Resources{Metal: 200, Crystal: 100},
		CostFactor: 2,
		BaseTime:   240,
		TimeFactor: 1.7,
	},
	ResearchIon: {
		Cost:       Resources{Metal: 1000, Crystal: 300, Deuterium: 100},
		CostFactor: 2,
		BaseTime:   360,
		TimeFactor: 1.8,
	},
	ResearchHyperspace: {
		Cost:       Resources{Metal: 1000, Crystal: 2000, Deuterium: 500},
		CostFactor: 2.2,
		BaseTime:   600,
		TimeFactor: 1.9,
	},
	ResearchCombustionDrive: {
		Cost:       Resources{Metal: 400, Deuterium: 600},
		CostFactor: 1.8,
		BaseTime:   260,
		TimeFactor: 1.8,
	},
	ResearchImpulseDrive: {
		Cost:       Resources{Metal: 2000, Crystal: 4000, Deuterium: 600},
		CostFactor: 1.9,
		BaseTime:   500,
		TimeFactor: 1.9,
	},
	ResearchHyperdrive: {
		Cost:       Resources{Metal: 10000, Crystal: 20000, Deuterium: 6000},
		CostFactor: 2,
		BaseTime:   900,
		TimeFactor: 2,
	},
	ResearchEspionage: {
		Cost:       Resources{Metal: 200, Crystal: 1000, Deuterium: 200},
		CostFactor: 2,
		BaseTime:   260,
		TimeFactor: 1.7,
	},
}

var shipCatalog = map[ShipKey]shipSpec{
	ShipSmallCargo: {
		Cost:     Resources{Metal: 2000, Crystal: 2000},
		BaseTime: 120,
	},
	ShipLargeCargo: {
		Cost:     Resources{Metal: 6000, Crystal: 6000},
		BaseTime: 240,
	},
	ShipLightFighter: {
		Cost:     Resources{Metal: 3000, Crystal: 1000},
		BaseTime: 180,
	},
	ShipProbe: {
		Cost:     Resources{Metal: 1000, Crystal: 500},
		BaseTime: 60,
	},
}

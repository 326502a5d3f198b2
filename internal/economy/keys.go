package economy

// BuildingKey identifies a building type on a planet.
type BuildingKey string

const (
	BuildingMetalMine            BuildingKey = "metal_mine"
	BuildingCrystalMine          BuildingKey = "crystal_mine"
	BuildingDeuteriumSynthesizer BuildingKey = "deuterium_synthesizer"
	BuildingSolarPlant           BuildingKey = "solar_plant"
	BuildingMetalStorage         BuildingKey = "metal_storage"
	BuildingCrystalStorage       BuildingKey = "crystal_storage"
	BuildingDeuteriumTank        BuildingKey = "deuterium_tank"
	BuildingRoboticsFactory      BuildingKey = "robotics_factory"
	BuildingShipyard             BuildingKey = "shipyard"
	BuildingResearchLab          BuildingKey = "research_lab"
)

// ResearchKey identifies a technology researched per player.
type ResearchKey string

const (
	ResearchEnergy          ResearchKey = "energy"
	ResearchLaser           ResearchKey = "laser"
	ResearchIon             ResearchKey = "ion"
	ResearchHyperspace      ResearchKey = "hyperspace"
	ResearchCombustionDrive ResearchKey = "combustion_drive"
	ResearchImpulseDrive    ResearchKey = "impulse_drive"
	ResearchHyperdrive      ResearchKey = "hyperdrive"
	ResearchEspionage       ResearchKey = "espionage"
)

// ShipKey identifies a ship type buildable at a shipyard.
type ShipKey string

const (
	ShipSmallCargo   ShipKey = "small_cargo"
	ShipLargeCargo   ShipKey = "large_cargo"
	ShipLightFighter ShipKey = "light_fighter"
	ShipProbe        ShipKey = "probe"
)

// ThrottleableBuildings are the extraction buildings whose output can be
// throttled by a per-planet production factor.
var ThrottleableBuildings = map[BuildingKey]bool{
	BuildingMetalMine:            true,
	BuildingCrystalMine:          true,
	BuildingDeuteriumSynthesizer: true,
}

// ValidBuildingKey reports whether key names a known building type.
func ValidBuildingKey(key BuildingKey) bool {
	_, ok := buildingCatalog[key]
	return ok
}

// ValidResearchKey reports whether key names a known technology.
func ValidResearchKey(key ResearchKey) bool {
	_, ok := researchCatalog[key]
	return ok
}

// ValidShipKey reports whether key names a known ship type.
func ValidShipKey(key ShipKey) bool {
	_, ok := shipCatalog[key]
	return ok
}

// BuildingKeys returns all known building keys.
func BuildingKeys() []BuildingKey {
	keys := make([]BuildingKey, 0, len(buildingCatalog))
	for key := range buildingCatalog {
		keys = append(keys, key)
	}
	return keys
}

// ResearchKeys returns all known research keys.
func ResearchKeys() []ResearchKey {
	keys := make([]ResearchKey, 0, len(researchCatalog))
	for key := range researchCatalog {
		keys = append(keys, key)
	}
	return keys
}

// ShipKeys returns all known ship keys.
func ShipKeys() []ShipKey {
	keys := make([]ShipKey, 0, len(shipCatalog))
	for key := range shipCatalog {
		keys = append(keys, key)
	}
	return keys
}

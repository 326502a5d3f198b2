// Package queue arbitrates upgrade actions: who may start one, what it costs,
// when it finishes and what happens when it does. Every mutation runs in a
// serializable transaction with accrual applied before any cost check.
package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/ledger"
	"astraxis-server/internal/planet"
	"astraxis-server/internal/player"
	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/database"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/universe"
)

// Scheduler registers an item for finalization at or after runAt.
// Re-registering the same id overwrites the previous registration.
type Scheduler interface {
	Schedule(itemID string, runAt time.Time)
}

// Notifier fans out state changes to a player's connected sessions. Delivery
// failures are the notifier's problem; callers never see them.
type Notifier interface {
	ResourcesUpdate(playerID, planetID int, resources economy.Resources, at time.Time)
	QueueUpdate(playerID int, items []Item)
	QueueFinished(playerID int, item *Item)
}

type Service struct {
	db           *database.DB
	repo         *Repository
	planetRepo   *planet.Repository
	playerRepo   *player.Repository
	universeRepo *universe.Repository
	ledger       *ledger.Service
	policy       config.QueuePolicy
	scheduler    Scheduler
	notifier     Notifier
	logger       *slog.Logger
}

func NewService(
	db *database.DB,
	repo *Repository,
	planetRepo *planet.Repository,
	playerRepo *player.Repository,
	universeRepo *universe.Repository,
	ledgerService *ledger.Service,
	policy config.QueuePolicy,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		planetRepo:   planetRepo,
		playerRepo:   playerRepo,
		universeRepo: universeRepo,
		ledger:       ledgerService,
		policy:       policy,
		logger:       logger,
	}
}

// SetScheduler wires the finalization scheduler after construction. The
// scheduler needs this service's Finalize, so the two cannot be built in one
// step.
func (s *Service) SetScheduler(scheduler Scheduler) {
	s.scheduler = scheduler
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// StartBuilding queues a building upgrade on one of the player's planets.
func (s *Service) StartBuilding(ctx context.Context, playerID, planetID int, key economy.BuildingKey) (*Item, error) {
	if !economy.ValidBuildingKey(key) {
		return nil, apperrors.Validationf("unknown building key %q", key)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, uni, err := s.loadOwnedPlanet(ctx, playerID, planetID, tx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.GetPendingForScope(ctx, playerID, &planetID, TypeBuilding, tx)
	if err != nil {
		return nil, err
	}
	startAt, err := planStart(s.policy, pending, now, TypeBuilding)
	if err != nil {
		return nil, err
	}

	levels, err := s.planetRepo.GetBuildingLevels(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}
	target := targetLevel(levels[key], pending, string(key))

	balance, _, err := s.ledger.ApplyAccrual(ctx, p, now, tx)
	if err != nil {
		return nil, err
	}

	cost := economy.BuildingCost(key, target)
	if !economy.Enough(balance.Resources, cost) {
		// The accrual stands even though the start is rejected; time passed
		// regardless of whether the upgrade was affordable.
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return nil, apperrors.Validation("not enough resources")
	}

	remaining, err := s.ledger.Debit(ctx, balance, cost, now, tx)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:         uuid.NewString(),
		Type:       TypeBuilding,
		PlayerID:   playerID,
		PlanetID:   &planetID,
		Key:        string(key),
		LevelOrQty: target,
		StartAt:    startAt,
		EndAt:      startAt.Add(economy.BuildingTime(key, target, uni.SpeedBuild)),
		Status:     StatusPending,
	}
	if err := s.repo.Insert(ctx, item, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Building upgrade queued",
		"player_id", playerID, "planet_id", planetID, "key", key, "level", target, "end_at", item.EndAt)

	s.afterStart(ctx, item, remaining, now)
	return item, nil
}

// StartShips queues a batch of ships at one of the player's planets.
func (s *Service) StartShips(ctx context.Context, playerID, planetID int, key economy.ShipKey, qty int) (*Item, error) {
	if !economy.ValidShipKey(key) {
		return nil, apperrors.Validationf("unknown ship key %q", key)
	}
	if qty < 1 {
		return nil, apperrors.Validation("ship quantity must be at least 1")
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, uni, err := s.loadOwnedPlanet(ctx, playerID, planetID, tx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.GetPendingForScope(ctx, playerID, &planetID, TypeShip, tx)
	if err != nil {
		return nil, err
	}
	startAt, err := planStart(s.policy, pending, now, TypeShip)
	if err != nil {
		return nil, err
	}

	levels, err := s.planetRepo.GetBuildingLevels(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}

	balance, _, err := s.ledger.ApplyAccrual(ctx, p, now, tx)
	if err != nil {
		return nil, err
	}

	cost := economy.ShipCost(key, qty)
	if !economy.Enough(balance.Resources, cost) {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return nil, apperrors.Validation("not enough resources")
	}

	remaining, err := s.ledger.Debit(ctx, balance, cost, now, tx)
	if err != nil {
		return nil, err
	}

	duration := economy.ShipBuildTime(key, qty, uni.SpeedBuild,
		levels[economy.BuildingShipyard], levels[economy.BuildingRoboticsFactory])
	item := &Item{
		ID:         uuid.NewString(),
		Type:       TypeShip,
		PlayerID:   playerID,
		PlanetID:   &planetID,
		Key:        string(key),
		LevelOrQty: qty,
		StartAt:    startAt,
		EndAt:      startAt.Add(duration),
		Status:     StatusPending,
	}
	if err := s.repo.Insert(ctx, item, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Ship batch queued",
		"player_id", playerID, "planet_id", planetID, "key", key, "qty", qty, "end_at", item.EndAt)

	s.afterStart(ctx, item, remaining, now)
	return item, nil
}

// StartResearch queues a technology upgrade. Research is player-wide: one
// research scope per player regardless of planet count. planetID optionally
// names the planet that pays; when nil the player's oldest planet pays.
func (s *Service) StartResearch(ctx context.Context, playerID int, planetID *int, key economy.ResearchKey) (*Item, error) {
	if !economy.ValidResearchKey(key) {
		return nil, apperrors.Validationf("unknown research key %q", key)
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var p *planet.Planet
	if planetID != nil {
		p, err = s.planetRepo.GetPlanet(ctx, *planetID, tx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.NotFound("planet not found")
		}
		if p.PlayerID != playerID {
			return nil, apperrors.Forbidden("planet belongs to another player")
		}
	} else {
		p, err = s.planetRepo.GetOldestPlanet(ctx, playerID, tx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperrors.NotFound("no planet available to fund research")
		}
	}

	uni, err := s.universeRepo.GetByID(ctx, p.UniverseID, tx)
	if err != nil {
		return nil, err
	}
	if uni == nil {
		return nil, apperrors.WrapInternal("planet references a missing universe", nil)
	}

	pending, err := s.repo.GetPendingForScope(ctx, playerID, nil, TypeResearch, tx)
	if err != nil {
		return nil, err
	}
	startAt, err := planStart(s.policy, pending, now, TypeResearch)
	if err != nil {
		return nil, err
	}

	currentLevel, err := s.playerRepo.GetResearchLevel(ctx, playerID, key, tx)
	if err != nil {
		return nil, err
	}
	target := targetLevel(currentLevel, pending, string(key))

	levels, err := s.planetRepo.GetBuildingLevels(ctx, p.ID, tx)
	if err != nil {
		return nil, err
	}

	balance, _, err := s.ledger.ApplyAccrual(ctx, p, now, tx)
	if err != nil {
		return nil, err
	}

	cost := economy.ResearchCost(key, target)
	if !economy.Enough(balance.Resources, cost) {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return nil, apperrors.Validation("not enough resources")
	}

	remaining, err := s.ledger.Debit(ctx, balance, cost, now, tx)
	if err != nil {
		return nil, err
	}

	duration := economy.ResearchTime(key, target, uni.SpeedResearch, levels[economy.BuildingResearchLab])
	spendPlanetID := p.ID
	item := &Item{
		ID:         uuid.NewString(),
		Type:       TypeResearch,
		PlayerID:   playerID,
		PlanetID:   &spendPlanetID,
		Key:        string(key),
		LevelOrQty: target,
		StartAt:    startAt,
		EndAt:      startAt.Add(duration),
		Status:     StatusPending,
	}
	if err := s.repo.Insert(ctx, item, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Research queued",
		"player_id", playerID, "spend_planet_id", p.ID, "key", key, "level", target, "end_at", item.EndAt)

	s.afterStart(ctx, item, remaining, now)
	return item, nil
}

// Finalize applies a completed queue item: bump the building level, record the
// research level or credit the ships, then flip the item to DONE. Safe to call
// any number of times; anything other than a PENDING item whose end time has
// passed is a no-op. The scheduler, the boot rescan and the periodic sweep all
// funnel through here.
func (s *Service) Finalize(ctx context.Context, itemID string) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	item, err := s.repo.GetByID(ctx, itemID, tx)
	if err != nil {
		return err
	}
	if !finalizeDue(item, now) {
		return nil
	}

	switch item.Type {
	case TypeBuilding:
		if err := s.planetRepo.UpsertBuildingLevel(ctx, *item.PlanetID, economy.BuildingKey(item.Key), item.LevelOrQty, tx); err != nil {
			return err
		}
		p, err := s.planetRepo.GetPlanet(ctx, *item.PlanetID, tx)
		if err != nil {
			return err
		}
		if p == nil {
			return apperrors.WrapInternal("queue item references a missing planet", nil)
		}
		// Accrue at the old rates up to now before the new level changes them.
		if _, _, err := s.ledger.ApplyAccrual(ctx, p, now, tx); err != nil {
			return err
		}
		if _, err := s.ledger.RecomputeProduction(ctx, p, now, tx); err != nil {
			return err
		}
	case TypeResearch:
		if err := s.playerRepo.UpsertResearchLevel(ctx, item.PlayerID, economy.ResearchKey(item.Key), item.LevelOrQty, tx); err != nil {
			return err
		}
	case TypeShip:
		if err := s.planetRepo.AddShips(ctx, *item.PlanetID, economy.ShipKey(item.Key), item.LevelOrQty, tx); err != nil {
			return err
		}
	default:
		return apperrors.WrapInternal("unknown queue item type", nil)
	}

	done, err := s.repo.MarkDone(ctx, itemID, tx)
	if err != nil {
		return err
	}
	if !done {
		// Lost a race with a concurrent finalize; serializable isolation should
		// have aborted us first, but either way nothing to apply.
		return nil
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	item.Status = StatusDone
	s.logger.Info("Queue item finalized",
		"item_id", item.ID, "type", item.Type, "key", item.Key, "level_or_qty", item.LevelOrQty)

	if s.notifier != nil {
		s.notifier.QueueFinished(item.PlayerID, item)
		s.notifyQueue(ctx, item.PlayerID, item.PlanetID, item.Type)
	}
	return nil
}

// UpdateProductionFactor throttles one of the three extraction buildings.
// Accrual runs first so the change applies only going forward.
func (s *Service) UpdateProductionFactor(ctx context.Context, playerID, planetID int, key economy.BuildingKey, factor int) error {
	if !economy.ThrottleableBuildings[key] {
		return apperrors.Validationf("building %q has no production factor", key)
	}
	factor = min(max(factor, 0), 100)

	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, _, err := s.loadOwnedPlanet(ctx, playerID, planetID, tx)
	if err != nil {
		return err
	}

	if _, _, err := s.ledger.ApplyAccrual(ctx, p, now, tx); err != nil {
		return err
	}
	if err := s.planetRepo.UpsertBuildingSetting(ctx, planetID, key, factor, tx); err != nil {
		return err
	}
	if _, err := s.ledger.RecomputeProduction(ctx, p, now, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.logger.Info("Production factor updated",
		"player_id", playerID, "planet_id", planetID, "key", key, "factor", factor)

	if s.notifier != nil {
		s.notifyQueue(ctx, playerID, &planetID, TypeBuilding)
	}
	return nil
}

// GetOverview accrues and returns the full authoritative state of one planet.
func (s *Service) GetOverview(ctx context.Context, playerID, planetID int) (*Overview, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, _, err := s.loadOwnedPlanet(ctx, playerID, planetID, tx)
	if err != nil {
		return nil, err
	}

	balance, rates, err := s.ledger.ApplyAccrual(ctx, p, now, tx)
	if err != nil {
		return nil, err
	}
	buildings, err := s.planetRepo.GetBuildingLevels(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}
	settings, err := s.planetRepo.GetBuildingSettings(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}
	ships, err := s.planetRepo.GetShipCounts(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}
	research, err := s.playerRepo.GetResearchLevels(ctx, playerID, tx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.GetPendingByPlanet(ctx, planetID, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &Overview{
		Planet:     p,
		Resources:  balance.Resources,
		Production: rates,
		Capacities: economy.StorageCapacities(buildings),
		Buildings:  buildings,
		Settings:   settings,
		Ships:      ships,
		Research:   research,
		Queue:      pending,
	}, nil
}

// GetPlanetQueue lists the pending items of one of the player's planets.
func (s *Service) GetPlanetQueue(ctx context.Context, playerID, planetID int) ([]Item, error) {
	p, err := s.planetRepo.GetPlanet(ctx, planetID, nil)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("planet not found")
	}
	if p.PlayerID != playerID {
		return nil, apperrors.Forbidden("planet belongs to another player")
	}
	return s.repo.GetPendingByPlanet(ctx, planetID, nil)
}

// GetPlayerQueue lists the player's pending items across all planets.
func (s *Service) GetPlayerQueue(ctx context.Context, playerID int) ([]Item, error) {
	return s.repo.GetPendingByPlayer(ctx, playerID, nil)
}

// PendingItems exposes every PENDING item for the scheduler's boot rescan.
func (s *Service) PendingItems(ctx context.Context) ([]Item, error) {
	return s.repo.GetAllPending(ctx)
}

func (s *Service) loadOwnedPlanet(ctx context.Context, playerID, planetID int, tx *database.Tx) (*planet.Planet, *universe.Universe, error) {
	p, err := s.planetRepo.GetPlanet(ctx, planetID, tx)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, apperrors.NotFound("planet not found")
	}
	if p.PlayerID != playerID {
		return nil, nil, apperrors.Forbidden("planet belongs to another player")
	}
	uni, err := s.universeRepo.GetByID(ctx, p.UniverseID, tx)
	if err != nil {
		return nil, nil, err
	}
	if uni == nil {
		return nil, nil, apperrors.WrapInternal("planet references a missing universe", nil)
	}
	return p, uni, nil
}

func (s *Service) afterStart(ctx context.Context, item *Item, remaining economy.Resources, now time.Time) {
	if s.scheduler != nil {
		s.scheduler.Schedule(item.ID, item.EndAt)
	}
	if s.notifier == nil {
		return
	}
	if item.PlanetID != nil {
		s.notifier.ResourcesUpdate(item.PlayerID, *item.PlanetID, remaining, now)
	}
	s.notifyQueue(ctx, item.PlayerID, item.PlanetID, item.Type)
}

// notifyQueue pushes a fresh queue snapshot for the scope an item belongs to.
// Best effort; a failed read is logged and dropped.
func (s *Service) notifyQueue(ctx context.Context, playerID int, planetID *int, itemType Type) {
	var items []Item
	var err error
	if itemType == TypeResearch {
		items, err = s.repo.GetPendingForScope(ctx, playerID, nil, TypeResearch, nil)
	} else if planetID != nil {
		items, err = s.repo.GetPendingByPlanet(ctx, *planetID, nil)
	} else {
		return
	}
	if err != nil {
		s.logger.Error("Failed to load queue snapshot for notification",
			"error", err, "player_id", playerID)
		return
	}
	s.notifier.QueueUpdate(playerID, items)
}

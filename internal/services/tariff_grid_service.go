package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tarification-service/internal/event"
	"tarification-service/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tariffSnapshotCacheKey = "tarif:grid:snapshot"

// TariffGridService serves the four tariff grids from an in-memory snapshot,
// loaded lazily on first use and replaced wholesale on reload. A calculation
// running during a reload may read the previous snapshot; grids change
// rarely, so that staleness is accepted.
//
// A serialized copy of the snapshot is kept in redis so restarted or sibling
// instances warm up without hitting postgres; any grid mutation drops it.
type TariffGridService struct {
	store       TariffStore
	redisClient *redis.Client
	events      *event.CatalogPublisher

	mu       sync.RWMutex
	snapshot *models.TariffGridSnapshot
}

// NewTariffGridService creates the grid service. redisClient and events may
// be nil; both are best-effort layers on top of the store.
func NewTariffGridService(store TariffStore, redisClient *redis.Client, events *event.CatalogPublisher) *TariffGridService {
	return &TariffGridService{store: store, redisClient: redisClient, events: events}
}

// Snapshot returns the current grid snapshot, loading it on first use.
func (s *TariffGridService) Snapshot() (*models.TariffGridSnapshot, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	if snapshot != nil {
		return snapshot, nil
	}

	return s.load()
}

// Reload discards any cached snapshot and replaces it wholesale.
func (s *TariffGridService) Reload() (*models.TariffGridSnapshot, error) {
	s.invalidate()

	snapshot, err := s.load()
	if err != nil {
		return nil, err
	}

	s.publish("tariff_grid", "", "reloaded")

	return snapshot, nil
}

func (s *TariffGridService) load() (*models.TariffGridSnapshot, error) {
	if cached := s.loadFromRedis(); cached != nil {
		s.mu.Lock()
		s.snapshot = cached
		s.mu.Unlock()
		return cached, nil
	}

	snapshot, err := s.store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load tariff grids: %w", err)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.storeInRedis(snapshot)

	return snapshot, nil
}

func (s *TariffGridService) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()

	if s.redisClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redisClient.Del(ctx, tariffSnapshotCacheKey).Err(); err != nil {
		slog.Error("failed to drop tariff snapshot from redis", "error", err)
	}
}

func (s *TariffGridService) loadFromRedis() *models.TariffGridSnapshot {
	if s.redisClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, err := s.redisClient.Get(ctx, tariffSnapshotCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed to read tariff snapshot from redis", "error", err)
		}
		return nil
	}

	var snapshot models.TariffGridSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		slog.Error("corrupt tariff snapshot in redis, falling back to postgres", "error", err)
		return nil
	}

	return &snapshot
}

func (s *TariffGridService) storeInRedis(snapshot *models.TariffGridSnapshot) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("failed to marshal tariff snapshot", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.redisClient.Set(ctx, tariffSnapshotCacheKey, raw, 0).Err(); err != nil {
		slog.Error("failed to cache tariff snapshot in redis", "error", err)
	}
}

// ============================================================================
// LOOKUPS
// ============================================================================

// LookupRC returns the civil liability premium for the vehicle. First row
// whose category and energy match exactly with fiscalPower inside
// [power_min, power_max]; no match is premium 0, not an error.
func (s *TariffGridService) LookupRC(category, energy string, fiscalPower int) (float64, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return 0, err
	}

	for _, row := range snapshot.RC {
		if row.Category == category && row.Energy == energy &&
			fiscalPower >= row.PowerMin && fiscalPower <= row.PowerMax {
			return row.Premium, nil
		}
	}

	return 0, nil
}

// LookupInjury returns the IC/IPT premium for the formula. A row carrying
// the exact seat count wins over a wildcard (seat_count 0) row; no match is
// premium 0.
func (s *TariffGridService) LookupInjury(kind models.InjuryCoverageKind, formulaNumber, seatCount int) (float64, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return 0, err
	}

	// Exact seat rows first, wildcard as fallback.
	for _, row := range snapshot.Injury {
		if row.CoverageKind == kind && row.FormulaNumber == formulaNumber && row.SeatCount == seatCount && row.SeatCount != 0 {
			return row.Premium, nil
		}
	}
	for _, row := range snapshot.Injury {
		if row.CoverageKind == kind && row.FormulaNumber == formulaNumber && row.SeatCount == 0 {
			return row.Premium, nil
		}
	}

	return 0, nil
}

// LookupCollision returns the TCM/TCL premium: rate_percent of the vehicle's
// new value, from the first row matching category, kind and franchise
// exactly with newValue inside [new_value_min, new_value_max]. No matching
// row (including an unknown franchise) is premium 0.
func (s *TariffGridService) LookupCollision(category string, kind models.CollisionKind, franchise, newValue float64) (float64, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return 0, err
	}

	for _, row := range snapshot.Collision {
		if row.Category == category && row.GuaranteeKind == kind && row.Franchise == franchise &&
			newValue >= row.NewValueMin && newValue <= row.NewValueMax {
			return row.RatePercent / 100 * newValue, nil
		}
	}

	return 0, nil
}

// ============================================================================
// RC TARIFF CRUD
// ============================================================================

func (s *TariffGridService) CreateRCRow(req models.CreateRCTariffRequest) (*models.RCTariffRow, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	row := &models.RCTariffRow{
		ID:       uuid.New(),
		Category: req.Category,
		Energy:   req.Energy,
		PowerMin: req.PowerMin,
		PowerMax: req.PowerMax,
		Premium:  req.Premium,
	}

	if err := s.store.CreateRCRow(row); err != nil {
		return nil, fmt.Errorf("failed to create RC tariff row: %w", err)
	}

	s.invalidate()
	s.publish("rc_tariff", row.ID.String(), "created")

	return row, nil
}

func (s *TariffGridService) GetRCRow(id uuid.UUID) (*models.RCTariffRow, error) {
	row, err := s.store.GetRCRowByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get RC tariff row: %w", err)
	}

	return row, nil
}

func (s *TariffGridService) UpdateRCRow(id uuid.UUID, req models.UpdateRCTariffRequest) (*models.RCTariffRow, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	row, err := s.store.GetRCRowByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get RC tariff row: %w", err)
	}

	if req.Category != nil {
		row.Category = *req.Category
	}
	if req.Energy != nil {
		row.Energy = *req.Energy
	}
	if req.PowerMin != nil {
		row.PowerMin = *req.PowerMin
	}
	if req.PowerMax != nil {
		row.PowerMax = *req.PowerMax
	}
	if req.Premium != nil {
		row.Premium = *req.Premium
	}

	if row.PowerMax < row.PowerMin {
		return nil, fmt.Errorf("%w: power range [%d, %d] is invalid", models.ErrValidation, row.PowerMin, row.PowerMax)
	}

	if err := s.store.UpdateRCRow(row); err != nil {
		return nil, fmt.Errorf("failed to update RC tariff row: %w", err)
	}

	s.invalidate()
	s.publish("rc_tariff", row.ID.String(), "updated")

	return row, nil
}

func (s *TariffGridService) DeleteRCRow(id uuid.UUID) error {
	if err := s.store.DeleteRCRow(id); err != nil {
		return fmt.Errorf("failed to delete RC tariff row: %w", err)
	}

	s.invalidate()
	s.publish("rc_tariff", id.String(), "deleted")

	return nil
}

// ============================================================================
// BULK REPLACE
// ============================================================================

func (s *TariffGridService) ReplaceInjuryGrid(req models.ReplaceInjuryGridRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	rows := make([]models.InjuryTariffRow, 0, len(req.Rows))
	for _, input := range req.Rows {
		rows = append(rows, models.InjuryTariffRow{
			ID:            uuid.New(),
			CoverageKind:  input.CoverageKind,
			FormulaNumber: input.FormulaNumber,
			SeatCount:     input.SeatCount,
			Premium:       input.Premium,
		})
	}

	if err := s.store.ReplaceInjuryRows(rows); err != nil {
		return fmt.Errorf("failed to replace injury grid: %w", err)
	}

	s.invalidate()
	s.publish("tariff_grid", "", "replaced")

	return nil
}

func (s *TariffGridService) ReplaceCollisionGrid(req models.ReplaceCollisionGridRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	rows := make([]models.CollisionTariffRow, 0, len(req.Rows))
	for _, input := range req.Rows {
		rows = append(rows, models.CollisionTariffRow{
			ID:            uuid.New(),
			Category:      input.Category,
			GuaranteeKind: input.GuaranteeKind,
			NewValueMin:   input.NewValueMin,
			NewValueMax:   input.NewValueMax,
			Franchise:     input.Franchise,
			RatePercent:   input.RatePercent,
		})
	}

	if err := s.store.ReplaceCollisionRows(rows); err != nil {
		return fmt.Errorf("failed to replace collision grid: %w", err)
	}

	s.invalidate()
	s.publish("tariff_grid", "", "replaced")

	return nil
}

func (s *TariffGridService) ReplaceFixedGrid(req models.ReplaceFixedGridRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	rows := make([]models.FixedTariffRow, 0, len(req.Rows))
	for _, input := range req.Rows {
		rows = append(rows, models.FixedTariffRow{
			ID:                 uuid.New(),
			GuaranteeName:      input.GuaranteeName,
			Premium:            input.Premium,
			EligibilityNote:    input.EligibilityNote,
			ReducedBundlePrice: input.ReducedBundlePrice,
		})
	}

	if err := s.store.ReplaceFixedRows(rows); err != nil {
		return fmt.Errorf("failed to replace fixed grid: %w", err)
	}

	s.invalidate()
	s.publish("tariff_grid", "", "replaced")

	return nil
}

func (s *TariffGridService) publish(entityType, entityID, action string) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt := event.CatalogEvent{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		slog.Error("failed to publish catalog event", "entity_type", entityType, "action", action, "error", err)
	}
}

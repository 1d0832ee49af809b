package services

import (
	"testing"

	"tarification-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// fakeTariffStore serves a snapshot from memory and records mutations.
type fakeTariffStore struct {
	snapshot  models.TariffGridSnapshot
	loadCount int
	rcRows    map[uuid.UUID]*models.RCTariffRow
}

func newFakeTariffStore() *fakeTariffStore {
	return &fakeTariffStore{rcRows: map[uuid.UUID]*models.RCTariffRow{}}
}

func (f *fakeTariffStore) LoadSnapshot() (*models.TariffGridSnapshot, error) {
	f.loadCount++
	snapshot := models.TariffGridSnapshot{
		RC:        append([]models.RCTariffRow(nil), f.snapshot.RC...),
		Injury:    append([]models.InjuryTariffRow(nil), f.snapshot.Injury...),
		Collision: append([]models.CollisionTariffRow(nil), f.snapshot.Collision...),
		Fixed:     append([]models.FixedTariffRow(nil), f.snapshot.Fixed...),
	}
	return &snapshot, nil
}

func (f *fakeTariffStore) CreateRCRow(row *models.RCTariffRow) error {
	f.rcRows[row.ID] = row
	f.snapshot.RC = append(f.snapshot.RC, *row)
	return nil
}

func (f *fakeTariffStore) GetRCRowByID(id uuid.UUID) (*models.RCTariffRow, error) {
	row, ok := f.rcRows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeTariffStore) UpdateRCRow(row *models.RCTariffRow) error {
	f.rcRows[row.ID] = row
	return nil
}

func (f *fakeTariffStore) DeleteRCRow(id uuid.UUID) error {
	delete(f.rcRows, id)
	return nil
}

func (f *fakeTariffStore) ReplaceInjuryRows(rows []models.InjuryTariffRow) error {
	f.snapshot.Injury = rows
	return nil
}

func (f *fakeTariffStore) ReplaceCollisionRows(rows []models.CollisionTariffRow) error {
	f.snapshot.Collision = rows
	return nil
}

func (f *fakeTariffStore) ReplaceFixedRows(rows []models.FixedTariffRow) error {
	f.snapshot.Fixed = rows
	return nil
}

func rcRow(category, energy string, powerMin, powerMax int, premium float64) models.RCTariffRow {
	return models.RCTariffRow{
		ID:       uuid.New(),
		Category: category,
		Energy:   energy,
		PowerMin: powerMin,
		PowerMax: powerMax,
		Premium:  premium,
	}
}

func injuryRow(kind models.InjuryCoverageKind, formula, seats int, premium float64) models.InjuryTariffRow {
	return models.InjuryTariffRow{
		ID:            uuid.New(),
		CoverageKind:  kind,
		FormulaNumber: formula,
		SeatCount:     seats,
		Premium:       premium,
	}
}

func collisionRow(category string, kind models.CollisionKind, valueMin, valueMax, franchise, ratePercent float64) models.CollisionTariffRow {
	return models.CollisionTariffRow{
		ID:            uuid.New(),
		Category:      category,
		GuaranteeKind: kind,
		NewValueMin:   valueMin,
		NewValueMax:   valueMax,
		Franchise:     franchise,
		RatePercent:   ratePercent,
	}
}

func newGridServiceWithStore(store *fakeTariffStore) *TariffGridService {
	return NewTariffGridService(store, nil, nil)
}

func newTestGridService() *TariffGridService {
	store := newFakeTariffStore()
	store.snapshot = models.TariffGridSnapshot{
		RC: []models.RCTariffRow{
			rcRow("401", "Essence", 1, 2, 76315),
			rcRow("401", "Essence", 3, 6, 87885),
			rcRow("401", "Essence", 7, 10, 99455),
			rcRow("401", "Diesel", 1, 2, 68675),
			rcRow("401", "Diesel", 3, 6, 96570),
		},
		Injury: []models.InjuryTariffRow{
			injuryRow(models.InjuryDriver, 1, 0, 6000),
			injuryRow(models.InjuryDriver, 2, 0, 8400),
			injuryRow(models.InjuryPassenger, 1, 0, 8400),
			injuryRow(models.InjuryPassenger, 1, 4, 10200),
			injuryRow(models.InjuryPassenger, 2, 4, 13800),
		},
		Collision: []models.CollisionTariffRow{
			collisionRow("401", models.CollisionFull, 0, 15000000, 100000, 2.6),
			collisionRow("401", models.CollisionFull, 15000001, 30000000, 100000, 2.2),
			collisionRow("401", models.CollisionIdentified, 0, 15000000, 50000, 1.6),
		},
	}
	return newGridServiceWithStore(store)
}

// ============================================================================
// TEST SUITE 1: RC LOOKUP
// ============================================================================

func TestLookupRC_PowerRange(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 87885.0, premium, "fiscal power 5 falls in the 3-6 band")
}

func TestLookupRC_RangeBoundsInclusive(t *testing.T) {
	service := newTestGridService()

	lower, err := service.LookupRC("401", "Essence", 3)
	require.NoError(t, err)
	assert.Equal(t, 87885.0, lower)

	upper, err := service.LookupRC("401", "Essence", 6)
	require.NoError(t, err)
	assert.Equal(t, 87885.0, upper)
}

func TestLookupRC_EnergyDiscriminates(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupRC("401", "Diesel", 1)
	require.NoError(t, err)
	assert.Equal(t, 68675.0, premium)
}

func TestLookupRC_NoMatchIsZero(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupRC("401", "Essence", 99)
	require.NoError(t, err)
	assert.Equal(t, 0.0, premium, "power outside every band prices at zero")

	premium, err = service.LookupRC("999", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, premium, "unknown category prices at zero")
}

// ============================================================================
// TEST SUITE 2: INJURY LOOKUP
// ============================================================================

func TestLookupInjury_ExactSeatRowWins(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupInjury(models.InjuryPassenger, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 10200.0, premium, "the 4-seat row wins over the wildcard row")
}

func TestLookupInjury_WildcardFallback(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupInjury(models.InjuryPassenger, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 8400.0, premium, "no 3-seat row, so the wildcard applies")
}

func TestLookupInjury_DriverIgnoresSeats(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupInjury(models.InjuryDriver, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 8400.0, premium)
}

func TestLookupInjury_NoMatchIsZero(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupInjury(models.InjuryPassenger, 9, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, premium, "unknown formula prices at zero")
}

// ============================================================================
// TEST SUITE 3: COLLISION LOOKUP
// ============================================================================

func TestLookupCollision_RateAppliedToNewValue(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupCollision("401", models.CollisionFull, 100000, 10000000)
	require.NoError(t, err)
	assert.Equal(t, 2.6/100*10000000, premium)
}

func TestLookupCollision_ValueBandDiscriminates(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupCollision("401", models.CollisionFull, 100000, 20000000)
	require.NoError(t, err)
	assert.Equal(t, 2.2/100*20000000, premium, "20M falls in the upper band")
}

func TestLookupCollision_FranchiseMustMatchExactly(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupCollision("401", models.CollisionFull, 75000, 10000000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, premium, "a franchise with no row prices at zero")
}

func TestLookupCollision_KindDiscriminates(t *testing.T) {
	service := newTestGridService()

	premium, err := service.LookupCollision("401", models.CollisionIdentified, 50000, 10000000)
	require.NoError(t, err)
	assert.Equal(t, 1.6/100*10000000, premium)
}

// ============================================================================
// TEST SUITE 4: SNAPSHOT LIFECYCLE
// ============================================================================

func TestSnapshot_LoadedOnce(t *testing.T) {
	store := newFakeTariffStore()
	store.snapshot = models.TariffGridSnapshot{
		RC: []models.RCTariffRow{rcRow("401", "Essence", 1, 10, 50000)},
	}
	service := newGridServiceWithStore(store)

	_, err := service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	_, err = service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, store.loadCount, "subsequent lookups reuse the in-memory snapshot")
}

func TestReload_ReplacesSnapshot(t *testing.T) {
	store := newFakeTariffStore()
	store.snapshot = models.TariffGridSnapshot{
		RC: []models.RCTariffRow{rcRow("401", "Essence", 1, 10, 50000)},
	}
	service := newGridServiceWithStore(store)

	premium, err := service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, premium)

	store.snapshot.RC[0].Premium = 60000

	// Still the old value until someone reloads.
	premium, err = service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, premium)

	_, err = service.Reload()
	require.NoError(t, err)

	premium, err = service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 60000.0, premium)
}

func TestCreateRCRow_InvalidatesSnapshot(t *testing.T) {
	store := newFakeTariffStore()
	service := newGridServiceWithStore(store)

	premium, err := service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, premium)

	_, err = service.CreateRCRow(models.CreateRCTariffRequest{
		Category: "401",
		Energy:   "Essence",
		PowerMin: 1,
		PowerMax: 10,
		Premium:  76315,
	})
	require.NoError(t, err)

	premium, err = service.LookupRC("401", "Essence", 5)
	require.NoError(t, err)
	assert.Equal(t, 76315.0, premium, "the new row is visible after the cache drop")
}

func TestUpdateRCRow_RejectsInvertedPowerRange(t *testing.T) {
	store := newFakeTariffStore()
	service := newGridServiceWithStore(store)

	row, err := service.CreateRCRow(models.CreateRCTariffRequest{
		Category: "401",
		Energy:   "Essence",
		PowerMin: 3,
		PowerMax: 6,
		Premium:  87885,
	})
	require.NoError(t, err)

	newMax := 2
	_, err = service.UpdateRCRow(row.ID, models.UpdateRCTariffRequest{PowerMax: &newMax})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReplaceInjuryGrid(t *testing.T) {
	store := newFakeTariffStore()
	store.snapshot = models.TariffGridSnapshot{
		Injury: []models.InjuryTariffRow{injuryRow(models.InjuryDriver, 1, 0, 6000)},
	}
	service := newGridServiceWithStore(store)

	premium, err := service.LookupInjury(models.InjuryDriver, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, premium)

	err = service.ReplaceInjuryGrid(models.ReplaceInjuryGridRequest{
		Rows: []models.InjuryTariffRowInput{
			{CoverageKind: models.InjuryDriver, FormulaNumber: 1, SeatCount: 0, Premium: 7200},
		},
	})
	require.NoError(t, err)

	premium, err = service.LookupInjury(models.InjuryDriver, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, premium, "the replaced grid is served after invalidation")
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tarification-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TariffRepository struct {
	db *sqlx.DB
}

func NewTariffRepository(db *sqlx.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// LoadSnapshot reads all four tariff grids in one pass. The caller caches
// the snapshot and replaces it wholesale on reload.
func (r *TariffRepository) LoadSnapshot() (*models.TariffGridSnapshot, error) {
	snapshot := &models.TariffGridSnapshot{LoadedAt: time.Now()}

	rcQuery := `
		SELECT id, category, energy, power_min, power_max, premium, created_at, updated_at
		FROM rc_tariff
		ORDER BY category, energy, power_min`
	if err := r.db.Select(&snapshot.RC, rcQuery); err != nil {
		return nil, fmt.Errorf("%w: failed to load RC tariff grid: %v", models.ErrStorage, err)
	}

	injuryQuery := `
		SELECT id, coverage_kind, formula_number, seat_count, premium, created_at, updated_at
		FROM injury_tariff
		ORDER BY coverage_kind, formula_number, seat_count`
	if err := r.db.Select(&snapshot.Injury, injuryQuery); err != nil {
		return nil, fmt.Errorf("%w: failed to load injury tariff grid: %v", models.ErrStorage, err)
	}

	collisionQuery := `
		SELECT id, category, guarantee_kind, new_value_min, new_value_max, franchise, rate_percent, created_at, updated_at
		FROM collision_tariff
		ORDER BY category, guarantee_kind, franchise, new_value_min`
	if err := r.db.Select(&snapshot.Collision, collisionQuery); err != nil {
		return nil, fmt.Errorf("%w: failed to load collision tariff grid: %v", models.ErrStorage, err)
	}

	fixedQuery := `
		SELECT id, guarantee_name, premium, eligibility_note, reduced_bundle_price, created_at, updated_at
		FROM fixed_tariff
		ORDER BY guarantee_name`
	if err := r.db.Select(&snapshot.Fixed, fixedQuery); err != nil {
		return nil, fmt.Errorf("%w: failed to load fixed tariff grid: %v", models.ErrStorage, err)
	}

	return snapshot, nil
}

// ============================================================================
// RC TARIFF CRUD
// ============================================================================

func (r *TariffRepository) CreateRCRow(row *models.RCTariffRow) error {
	row.CreatedAt = time.Now()
	row.UpdatedAt = time.Now()

	query := `
		INSERT INTO rc_tariff (id, category, energy, power_min, power_max, premium, created_at, updated_at)
		VALUES (:id, :category, :energy, :power_min, :power_max, :premium, :created_at, :updated_at)`

	if _, err := r.db.NamedExec(query, row); err != nil {
		return fmt.Errorf("%w: failed to create RC tariff row: %v", models.ErrStorage, err)
	}

	return nil
}

func (r *TariffRepository) GetRCRowByID(id uuid.UUID) (*models.RCTariffRow, error) {
	var row models.RCTariffRow
	query := `
		SELECT id, category, energy, power_min, power_max, premium, created_at, updated_at
		FROM rc_tariff
		WHERE id = $1`

	err := r.db.Get(&row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("RC tariff row %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get RC tariff row: %v", models.ErrStorage, err)
	}

	return &row, nil
}

func (r *TariffRepository) UpdateRCRow(row *models.RCTariffRow) error {
	row.UpdatedAt = time.Now()

	query := `
		UPDATE rc_tariff
		SET category = :category,
			energy = :energy,
			power_min = :power_min,
			power_max = :power_max,
			premium = :premium,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("%w: failed to update RC tariff row: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("RC tariff row %s: %w", row.ID, models.ErrNotFound)
	}

	return nil
}

func (r *TariffRepository) DeleteRCRow(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM rc_tariff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete RC tariff row: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("RC tariff row %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// ============================================================================
// BULK REPLACE (injury / collision / fixed grids)
// ============================================================================

// ReplaceInjuryRows swaps the whole injury grid in one transaction.
func (r *TariffRepository) ReplaceInjuryRows(rows []models.InjuryTariffRow) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM injury_tariff`); err != nil {
		return fmt.Errorf("%w: failed to clear injury tariff grid: %v", models.ErrStorage, err)
	}

	query := `
		INSERT INTO injury_tariff (id, coverage_kind, formula_number, seat_count, premium, created_at, updated_at)
		VALUES (:id, :coverage_kind, :formula_number, :seat_count, :premium, :created_at, :updated_at)`

	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExec(query, rows[i]); err != nil {
			return fmt.Errorf("%w: failed to insert injury tariff row: %v", models.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit injury grid replace: %v", models.ErrStorage, err)
	}

	return nil
}

// ReplaceCollisionRows swaps the whole collision matrix in one transaction.
func (r *TariffRepository) ReplaceCollisionRows(rows []models.CollisionTariffRow) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM collision_tariff`); err != nil {
		return fmt.Errorf("%w: failed to clear collision tariff grid: %v", models.ErrStorage, err)
	}

	query := `
		INSERT INTO collision_tariff (id, category, guarantee_kind, new_value_min, new_value_max, franchise, rate_percent, created_at, updated_at)
		VALUES (:id, :category, :guarantee_kind, :new_value_min, :new_value_max, :franchise, :rate_percent, :created_at, :updated_at)`

	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExec(query, rows[i]); err != nil {
			return fmt.Errorf("%w: failed to insert collision tariff row: %v", models.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit collision grid replace: %v", models.ErrStorage, err)
	}

	return nil
}

// ReplaceFixedRows swaps the whole fixed tariff list in one transaction.
func (r *TariffRepository) ReplaceFixedRows(rows []models.FixedTariffRow) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fixed_tariff`); err != nil {
		return fmt.Errorf("%w: failed to clear fixed tariff grid: %v", models.ErrStorage, err)
	}

	query := `
		INSERT INTO fixed_tariff (id, guarantee_name, premium, eligibility_note, reduced_bundle_price, created_at, updated_at)
		VALUES (:id, :guarantee_name, :premium, :eligibility_note, :reduced_bundle_price, :created_at, :updated_at)`

	now := time.Now()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		if _, err := tx.NamedExec(query, rows[i]); err != nil {
			return fmt.Errorf("%w: failed to insert fixed tariff row: %v", models.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit fixed grid replace: %v", models.ErrStorage, err)
	}

	return nil
}

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

type GuaranteeRepository struct {
	db *sqlx.DB
}

func NewGuaranteeRepository(db *sqlx.DB) *GuaranteeRepository {
	return &GuaranteeRepository{db: db}
}

const guaranteeColumns = `id, name, code, category, calculation_method, is_optional, is_active,
		rate, min_value, max_value, parameters, franchise_options, conditions,
		created_by, created_at, updated_at`

// Create inserts the guarantee and, when fixedAmount is set, its sidecar
// tariff rule in the same transaction so the pair can never diverge.
func (r *GuaranteeRepository) Create(guarantee *models.Guarantee, fixedAmount *float64) error {
	guarantee.CreatedAt = time.Now()
	guarantee.UpdatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO guarantee (id, name, code, category, calculation_method, is_optional, is_active,
			rate, min_value, max_value, parameters, franchise_options, conditions,
			created_by, created_at, updated_at)
		VALUES (:id, :name, :code, :category, :calculation_method, :is_optional, :is_active,
			:rate, :min_value, :max_value, :parameters, :franchise_options, :conditions,
			:created_by, :created_at, :updated_at)`

	if _, err := tx.NamedExec(query, guarantee); err != nil {
		return fmt.Errorf("%w: failed to create guarantee: %v", models.ErrStorage, err)
	}

	if fixedAmount != nil {
		if err := upsertTariffRule(tx, guarantee.ID, *fixedAmount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit guarantee create: %v", models.ErrStorage, err)
	}

	return nil
}

func (r *GuaranteeRepository) GetByID(id uuid.UUID) (*models.Guarantee, error) {
	var guarantee models.Guarantee
	query := `SELECT ` + guaranteeColumns + ` FROM guarantee WHERE id = $1`

	err := r.db.Get(&guarantee, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guarantee %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get guarantee: %v", models.ErrStorage, err)
	}

	return &guarantee, nil
}

func (r *GuaranteeRepository) GetAll() ([]models.Guarantee, error) {
	var guarantees []models.Guarantee
	query := `SELECT ` + guaranteeColumns + ` FROM guarantee ORDER BY name`

	if err := r.db.Select(&guarantees, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list guarantees: %v", models.ErrStorage, err)
	}

	return guarantees, nil
}

func (r *GuaranteeRepository) GetActiveByCategory(category models.GuaranteeCategory) ([]models.Guarantee, error) {
	var guarantees []models.Guarantee
	query := `SELECT ` + guaranteeColumns + ` FROM guarantee WHERE category = $1 AND is_active = true ORDER BY name`

	if err := r.db.Select(&guarantees, query, category); err != nil {
		return nil, fmt.Errorf("%w: failed to list guarantees by category: %v", models.ErrStorage, err)
	}

	return guarantees, nil
}

func (r *GuaranteeRepository) CodeExists(code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM guarantee WHERE code = $1)`

	if err := r.db.Get(&exists, query, code); err != nil {
		return false, fmt.Errorf("%w: failed to check guarantee code: %v", models.ErrStorage, err)
	}

	return exists, nil
}

// Update rewrites the guarantee row and applies the sidecar rule change in
// one transaction. fixedAmount upserts the rule; deleteRule removes it.
func (r *GuaranteeRepository) Update(guarantee *models.Guarantee, fixedAmount *float64, deleteRule bool) error {
	guarantee.UpdatedAt = time.Now()

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `
		UPDATE guarantee
		SET name = :name,
			code = :code,
			category = :category,
			calculation_method = :calculation_method,
			is_optional = :is_optional,
			is_active = :is_active,
			rate = :rate,
			min_value = :min_value,
			max_value = :max_value,
			parameters = :parameters,
			franchise_options = :franchise_options,
			conditions = :conditions,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := tx.NamedExec(query, guarantee)
	if err != nil {
		return fmt.Errorf("%w: failed to update guarantee: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("guarantee %s: %w", guarantee.ID, models.ErrNotFound)
	}

	if deleteRule {
		if _, err := tx.Exec(`DELETE FROM guarantee_tariff_rule WHERE guarantee_id = $1`, guarantee.ID); err != nil {
			return fmt.Errorf("%w: failed to delete tariff rule: %v", models.ErrStorage, err)
		}
	} else if fixedAmount != nil {
		if err := upsertTariffRule(tx, guarantee.ID, *fixedAmount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit guarantee update: %v", models.ErrStorage, err)
	}

	return nil
}

// Delete removes the guarantee and its sidecar rule together.
func (r *GuaranteeRepository) Delete(id uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", models.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM guarantee_tariff_rule WHERE guarantee_id = $1`, id); err != nil {
		return fmt.Errorf("%w: failed to delete tariff rule: %v", models.ErrStorage, err)
	}

	result, err := tx.Exec(`DELETE FROM guarantee WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete guarantee: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("guarantee %s: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit guarantee delete: %v", models.ErrStorage, err)
	}

	return nil
}

// GetTariffRule returns the sidecar rule for the guarantee, or nil when no
// rule exists. Absence is not an error: most methods have no rule.
func (r *GuaranteeRepository) GetTariffRule(guaranteeID uuid.UUID) (*models.GuaranteeTariffRule, error) {
	var rule models.GuaranteeTariffRule
	query := `
		SELECT guarantee_id, amount, created_at, updated_at
		FROM guarantee_tariff_rule
		WHERE guarantee_id = $1`

	err := r.db.Get(&rule, query, guaranteeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get tariff rule: %v", models.ErrStorage, err)
	}

	return &rule, nil
}

func upsertTariffRule(tx *sqlx.Tx, guaranteeID uuid.UUID, amount float64) error {
	query := `
		INSERT INTO guarantee_tariff_rule (guarantee_id, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (guarantee_id)
		DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`

	if _, err := tx.Exec(query, guaranteeID, amount, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to upsert tariff rule: %v", models.ErrStorage, err)
	}

	return nil
}

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

type PackageRepository struct {
	db *sqlx.DB
}

func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, name, code, description, guarantee_ids, base_price, total_price,
		vehicle_type_restrictions, is_popular, is_active, created_by, created_at, updated_at`

func (r *PackageRepository) Create(pkg *models.InsurancePackage) error {
	pkg.CreatedAt = time.Now()
	pkg.UpdatedAt = time.Now()

	query := `
		INSERT INTO insurance_package (id, name, code, description, guarantee_ids, base_price, total_price,
			vehicle_type_restrictions, is_popular, is_active, created_by, created_at, updated_at)
		VALUES (:id, :name, :code, :description, :guarantee_ids, :base_price, :total_price,
			:vehicle_type_restrictions, :is_popular, :is_active, :created_by, :created_at, :updated_at)`

	if _, err := r.db.NamedExec(query, pkg); err != nil {
		return fmt.Errorf("%w: failed to create package: %v", models.ErrStorage, err)
	}

	return nil
}

func (r *PackageRepository) GetByID(id uuid.UUID) (*models.InsurancePackage, error) {
	var pkg models.InsurancePackage
	query := `SELECT ` + packageColumns + ` FROM insurance_package WHERE id = $1`

	err := r.db.Get(&pkg, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("package %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to get package: %v", models.ErrStorage, err)
	}

	return &pkg, nil
}

func (r *PackageRepository) GetAll() ([]models.InsurancePackage, error) {
	var pkgs []models.InsurancePackage
	query := `SELECT ` + packageColumns + ` FROM insurance_package ORDER BY name`

	if err := r.db.Select(&pkgs, query); err != nil {
		return nil, fmt.Errorf("%w: failed to list packages: %v", models.ErrStorage, err)
	}

	return pkgs, nil
}

func (r *PackageRepository) CodeExists(code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM insurance_package WHERE code = $1)`

	if err := r.db.Get(&exists, query, code); err != nil {
		return false, fmt.Errorf("%w: failed to check package code: %v", models.ErrStorage, err)
	}

	return exists, nil
}

func (r *PackageRepository) Update(pkg *models.InsurancePackage) error {
	pkg.UpdatedAt = time.Now()

	query := `
		UPDATE insurance_package
		SET name = :name,
			code = :code,
			description = :description,
			guarantee_ids = :guarantee_ids,
			base_price = :base_price,
			total_price = :total_price,
			vehicle_type_restrictions = :vehicle_type_restrictions,
			is_popular = :is_popular,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExec(query, pkg)
	if err != nil {
		return fmt.Errorf("%w: failed to update package: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("package %s: %w", pkg.ID, models.ErrNotFound)
	}

	return nil
}

func (r *PackageRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM insurance_package WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete package: %v", models.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", models.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("package %s: %w", id, models.ErrNotFound)
	}

	return nil
}

package services

import (
	"tarification-service/internal/models"

	"github.com/google/uuid"
)

// Store interfaces the services consume. The sqlx repositories satisfy them;
// tests substitute in-memory fakes.

type GuaranteeStore interface {
	Create(guarantee *models.Guarantee, fixedAmount *float64) error
	GetByID(id uuid.UUID) (*models.Guarantee, error)
	GetAll() ([]models.Guarantee, error)
	GetActiveByCategory(category models.GuaranteeCategory) ([]models.Guarantee, error)
	CodeExists(code string) (bool, error)
	Update(guarantee *models.Guarantee, fixedAmount *float64, deleteRule bool) error
	Delete(id uuid.UUID) error
	GetTariffRule(guaranteeID uuid.UUID) (*models.GuaranteeTariffRule, error)
}

type PackageStore interface {
	Create(pkg *models.InsurancePackage) error
	GetByID(id uuid.UUID) (*models.InsurancePackage, error)
	GetAll() ([]models.InsurancePackage, error)
	CodeExists(code string) (bool, error)
	Update(pkg *models.InsurancePackage) error
	Delete(id uuid.UUID) error
}

type TariffStore interface {
	LoadSnapshot() (*models.TariffGridSnapshot, error)
	CreateRCRow(row *models.RCTariffRow) error
	GetRCRowByID(id uuid.UUID) (*models.RCTariffRow, error)
	UpdateRCRow(row *models.RCTariffRow) error
	DeleteRCRow(id uuid.UUID) error
	ReplaceInjuryRows(rows []models.InjuryTariffRow) error
	ReplaceCollisionRows(rows []models.CollisionTariffRow) error
	ReplaceFixedRows(rows []models.FixedTariffRow) error
}

// Collaborator views consumed by the pricing engine. GuaranteeService,
// PackageService and TariffGridService implement them.

type GuaranteeResolver interface {
	GetGuarantee(id uuid.UUID) (*models.Guarantee, error)
}

type PackageResolver interface {
	GetPackage(id uuid.UUID) (*models.InsurancePackage, error)
}

type GridLookup interface {
	LookupRC(category, energy string, fiscalPower int) (float64, error)
	LookupInjury(kind models.InjuryCoverageKind, formulaNumber, seatCount int) (float64, error)
	LookupCollision(category string, kind models.CollisionKind, franchise, newValue float64) (float64, error)
}

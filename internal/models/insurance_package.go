package models

import (
	"time"

	"tarification-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// PACKAGE CATALOG
// ============================================================================

// InsurancePackage is a named, pre-priced bundle of guarantees. GuaranteeIDs
// is ordered and may reference guarantees that no longer exist; pricing skips
// those silently. TotalPrice is caller-supplied and is NOT recomputed when
// the member list changes — callers re-save the package after editing it.
type InsurancePackage struct {
	ID                      uuid.UUID         `json:"id" db:"id"`
	Name                    string            `json:"name" db:"name"`
	Code                    string            `json:"code" db:"code"`
	Description             *string           `json:"description,omitempty" db:"description"`
	GuaranteeIDs            utils.UUIDSlice   `json:"guarantee_ids" db:"guarantee_ids"`
	BasePrice               float64           `json:"base_price" db:"base_price"`
	TotalPrice              float64           `json:"total_price" db:"total_price"`
	VehicleTypeRestrictions utils.StringSlice `json:"vehicle_type_restrictions,omitempty" db:"vehicle_type_restrictions"`
	IsPopular               bool              `json:"is_popular" db:"is_popular"`
	IsActive                bool              `json:"is_active" db:"is_active"`
	CreatedBy               *string           `json:"created_by,omitempty" db:"created_by"`
	CreatedAt               time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at" db:"updated_at"`
}

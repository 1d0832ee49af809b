package models

import (
	"fmt"
	"strings"

	"tarification-service/internal/utils"

	"github.com/google/uuid"
)

// Helper functions for validation
func isValidGuaranteeCategory(category GuaranteeCategory) bool {
	switch category {
	case CategoryCivilLiability, CategoryLegalDefense, CategoryDriverInjury,
		CategoryPassengerInjury, CategoryFire, CategoryTheft, CategoryArmedTheft,
		CategoryGlassBreakage, CategoryFullCollision, CategoryIdentifiedCollision,
		CategoryAssistance, CategoryRecourseAdvance, CategoryAccessories:
		return true
	default:
		return false
	}
}

func isValidCalculationMethod(method CalculationMethod) bool {
	switch method {
	case MethodFree, MethodFixedAmount, MethodRateOnCurrentValue,
		MethodRateOnNewValue, MethodCivilLiability, MethodCollisionMatrix,
		MethodInjuryFormula, MethodConditionalRate:
		return true
	default:
		return false
	}
}

func isValidInjuryCoverageKind(kind InjuryCoverageKind) bool {
	return kind == InjuryDriver || kind == InjuryPassenger
}

func isValidCollisionKind(kind CollisionKind) bool {
	return kind == CollisionFull || kind == CollisionIdentified
}

func trimAndValidateString(str string, fieldName string, minLen, maxLen int) error {
	trimmed := strings.TrimSpace(str)
	if len(trimmed) < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if len(trimmed) > maxLen {
		return fmt.Errorf("%s must be %d characters or less", fieldName, maxLen)
	}
	return nil
}

// ============================================================================
// GUARANTEE REQUESTS
// ============================================================================

type CreateGuaranteeRequest struct {
	Name              string             `json:"name" validate:"required,min=1,max=100"`
	Code              string             `json:"code,omitempty" validate:"omitempty,max=32"`
	Category          GuaranteeCategory  `json:"category" validate:"required"`
	CalculationMethod CalculationMethod  `json:"calculation_method" validate:"required"`
	IsOptional        *bool              `json:"is_optional,omitempty"`
	IsActive          *bool              `json:"is_active,omitempty"`
	Rate              float64            `json:"rate"`
	MinValue          *float64           `json:"min_value,omitempty"`
	MaxValue          *float64           `json:"max_value,omitempty"`
	Parameters        MethodParams       `json:"parameters"`
	FranchiseOptions  utils.Float64Slice `json:"franchise_options,omitempty"`
	Conditions        *string            `json:"conditions,omitempty"`
	// FixedAmount feeds the sidecar tariff rule for fixed-amount guarantees.
	FixedAmount *float64 `json:"fixed_amount,omitempty"`
	CreatedBy   *string  `json:"created_by,omitempty"`
}

func (r CreateGuaranteeRequest) Validate() error {
	if err := trimAndValidateString(r.Name, "name", 1, 100); err != nil {
		return err
	}

	if !isValidGuaranteeCategory(r.Category) {
		return fmt.Errorf("category %q is not a known guarantee category", r.Category)
	}

	if !isValidCalculationMethod(r.CalculationMethod) {
		return fmt.Errorf("calculation_method %q is not a known calculation method", r.CalculationMethod)
	}

	if r.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}

	if r.MinValue != nil && r.MaxValue != nil && *r.MinValue > *r.MaxValue {
		return fmt.Errorf("min_value must not exceed max_value")
	}

	if r.Parameters.Conditional != nil && r.Parameters.Conditional.Expression != "" {
		if _, err := ParseRateCondition(r.Parameters.Conditional.Expression); err != nil {
			return fmt.Errorf("conditional expression invalid: %w", err)
		}
	}

	return nil
}

type UpdateGuaranteeRequest struct {
	Name              *string             `json:"name,omitempty"`
	Code              *string             `json:"code,omitempty"`
	Category          *GuaranteeCategory  `json:"category,omitempty"`
	CalculationMethod *CalculationMethod  `json:"calculation_method,omitempty"`
	IsOptional        *bool               `json:"is_optional,omitempty"`
	IsActive          *bool               `json:"is_active,omitempty"`
	Rate              *float64            `json:"rate,omitempty"`
	MinValue          *float64            `json:"min_value,omitempty"`
	MaxValue          *float64            `json:"max_value,omitempty"`
	Parameters        *MethodParams       `json:"parameters,omitempty"`
	FranchiseOptions  *utils.Float64Slice `json:"franchise_options,omitempty"`
	Conditions        *string             `json:"conditions,omitempty"`
	// FixedAmount updates the sidecar tariff rule; ClearFixedAmount deletes it.
	FixedAmount      *float64 `json:"fixed_amount,omitempty"`
	ClearFixedAmount bool     `json:"clear_fixed_amount,omitempty"`
}

func (r UpdateGuaranteeRequest) Validate() error {
	if r.Name != nil {
		if err := trimAndValidateString(*r.Name, "name", 1, 100); err != nil {
			return err
		}
	}

	if r.Category != nil && !isValidGuaranteeCategory(*r.Category) {
		return fmt.Errorf("category %q is not a known guarantee category", *r.Category)
	}

	if r.CalculationMethod != nil && !isValidCalculationMethod(*r.CalculationMethod) {
		return fmt.Errorf("calculation_method %q is not a known calculation method", *r.CalculationMethod)
	}

	if r.Rate != nil && *r.Rate < 0 {
		return fmt.Errorf("rate must not be negative")
	}

	if r.FixedAmount != nil && r.ClearFixedAmount {
		return fmt.Errorf("fixed_amount and clear_fixed_amount are mutually exclusive")
	}

	return nil
}

// ============================================================================
// PACKAGE REQUESTS
// ============================================================================

type CreatePackageRequest struct {
	Name                    string            `json:"name" validate:"required,min=1,max=100"`
	Code                    string            `json:"code,omitempty" validate:"omitempty,max=32"`
	Description             *string           `json:"description,omitempty" validate:"omitempty,max=500"`
	GuaranteeIDs            utils.UUIDSlice   `json:"guarantee_ids"`
	BasePrice               float64           `json:"base_price"`
	TotalPrice              *float64          `json:"total_price,omitempty"`
	VehicleTypeRestrictions utils.StringSlice `json:"vehicle_type_restrictions,omitempty"`
	IsPopular               *bool             `json:"is_popular,omitempty"`
	IsActive                *bool             `json:"is_active,omitempty"`
	CreatedBy               *string           `json:"created_by,omitempty"`
}

func (r CreatePackageRequest) Validate() error {
	if err := trimAndValidateString(r.Name, "name", 1, 100); err != nil {
		return err
	}

	if r.Description != nil && len(strings.TrimSpace(*r.Description)) > 500 {
		return fmt.Errorf("description must be 500 characters or less")
	}

	if r.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative")
	}

	if r.TotalPrice != nil && *r.TotalPrice < 0 {
		return fmt.Errorf("total_price must not be negative")
	}

	return nil
}

type UpdatePackageRequest struct {
	Name                    *string            `json:"name,omitempty"`
	Code                    *string            `json:"code,omitempty"`
	Description             *string            `json:"description,omitempty"`
	GuaranteeIDs            *utils.UUIDSlice   `json:"guarantee_ids,omitempty"`
	BasePrice               *float64           `json:"base_price,omitempty"`
	TotalPrice              *float64           `json:"total_price,omitempty"`
	VehicleTypeRestrictions *utils.StringSlice `json:"vehicle_type_restrictions,omitempty"`
	IsPopular               *bool              `json:"is_popular,omitempty"`
	IsActive                *bool              `json:"is_active,omitempty"`
}

func (r UpdatePackageRequest) Validate() error {
	if r.Name != nil {
		if err := trimAndValidateString(*r.Name, "name", 1, 100); err != nil {
			return err
		}
	}

	if r.BasePrice != nil && *r.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative")
	}

	if r.TotalPrice != nil && *r.TotalPrice < 0 {
		return fmt.Errorf("total_price must not be negative")
	}

	return nil
}

// ============================================================================
// TARIFF GRID REQUESTS
// ============================================================================

type CreateRCTariffRequest struct {
	Category string  `json:"category" validate:"required,min=1,max=10"`
	Energy   string  `json:"energy" validate:"required,min=1,max=20"`
	PowerMin int     `json:"power_min"`
	PowerMax int     `json:"power_max"`
	Premium  float64 `json:"premium"`
}

func (r CreateRCTariffRequest) Validate() error {
	if err := trimAndValidateString(r.Category, "category", 1, 10); err != nil {
		return err
	}

	if err := trimAndValidateString(r.Energy, "energy", 1, 20); err != nil {
		return err
	}

	if r.PowerMin < 0 || r.PowerMax < r.PowerMin {
		return fmt.Errorf("power range [%d, %d] is invalid", r.PowerMin, r.PowerMax)
	}

	if r.Premium < 0 {
		return fmt.Errorf("premium must not be negative")
	}

	return nil
}

type UpdateRCTariffRequest struct {
	Category *string  `json:"category,omitempty"`
	Energy   *string  `json:"energy,omitempty"`
	PowerMin *int     `json:"power_min,omitempty"`
	PowerMax *int     `json:"power_max,omitempty"`
	Premium  *float64 `json:"premium,omitempty"`
}

func (r UpdateRCTariffRequest) Validate() error {
	if r.Category != nil {
		if err := trimAndValidateString(*r.Category, "category", 1, 10); err != nil {
			return err
		}
	}

	if r.Energy != nil {
		if err := trimAndValidateString(*r.Energy, "energy", 1, 20); err != nil {
			return err
		}
	}

	if r.Premium != nil && *r.Premium < 0 {
		return fmt.Errorf("premium must not be negative")
	}

	return nil
}

type InjuryTariffRowInput struct {
	CoverageKind  InjuryCoverageKind `json:"coverage_kind"`
	FormulaNumber int                `json:"formula_number"`
	SeatCount     int                `json:"seat_count"`
	Premium       float64            `json:"premium"`
}

type ReplaceInjuryGridRequest struct {
	Rows []InjuryTariffRowInput `json:"rows"`
}

func (r ReplaceInjuryGridRequest) Validate() error {
	for i, row := range r.Rows {
		if !isValidInjuryCoverageKind(row.CoverageKind) {
			return fmt.Errorf("rows[%d]: coverage_kind %q is not valid", i, row.CoverageKind)
		}
		if row.FormulaNumber < 1 {
			return fmt.Errorf("rows[%d]: formula_number must be at least 1", i)
		}
		if row.SeatCount < 0 {
			return fmt.Errorf("rows[%d]: seat_count must not be negative (0 means any)", i)
		}
		if row.Premium < 0 {
			return fmt.Errorf("rows[%d]: premium must not be negative", i)
		}
	}
	return nil
}

type CollisionTariffRowInput struct {
	Category      string        `json:"category"`
	GuaranteeKind CollisionKind `json:"guarantee_kind"`
	NewValueMin   float64       `json:"new_value_min"`
	NewValueMax   float64       `json:"new_value_max"`
	Franchise     float64       `json:"franchise"`
	RatePercent   float64       `json:"rate_percent"`
}

type ReplaceCollisionGridRequest struct {
	Rows []CollisionTariffRowInput `json:"rows"`
}

func (r ReplaceCollisionGridRequest) Validate() error {
	for i, row := range r.Rows {
		if strings.TrimSpace(row.Category) == "" {
			return fmt.Errorf("rows[%d]: category is required", i)
		}
		if !isValidCollisionKind(row.GuaranteeKind) {
			return fmt.Errorf("rows[%d]: guarantee_kind %q is not valid", i, row.GuaranteeKind)
		}
		if row.NewValueMax < row.NewValueMin {
			return fmt.Errorf("rows[%d]: new value range is invalid", i)
		}
		if row.Franchise < 0 || row.RatePercent < 0 {
			return fmt.Errorf("rows[%d]: franchise and rate_percent must not be negative", i)
		}
	}
	return nil
}

type FixedTariffRowInput struct {
	GuaranteeName      string   `json:"guarantee_name"`
	Premium            float64  `json:"premium"`
	EligibilityNote    *string  `json:"eligibility_note,omitempty"`
	ReducedBundlePrice *float64 `json:"reduced_bundle_price,omitempty"`
}

type ReplaceFixedGridRequest struct {
	Rows []FixedTariffRowInput `json:"rows"`
}

func (r ReplaceFixedGridRequest) Validate() error {
	for i, row := range r.Rows {
		if strings.TrimSpace(row.GuaranteeName) == "" {
			return fmt.Errorf("rows[%d]: guarantee_name is required", i)
		}
		if row.Premium < 0 {
			return fmt.Errorf("rows[%d]: premium must not be negative", i)
		}
		if row.ReducedBundlePrice != nil && *row.ReducedBundlePrice < 0 {
			return fmt.Errorf("rows[%d]: reduced_bundle_price must not be negative", i)
		}
	}
	return nil
}

// QuickEstimateRequest drives the approximate live-feedback estimate. It
// shares nothing with the authoritative calculation.
type QuickEstimateRequest struct {
	BasePrice  float64                 `json:"base_price"`
	Selections []QuickEstimateSelection `json:"selections"`
}

type QuickEstimateSelection struct {
	GuaranteeID uuid.UUID `json:"guarantee_id"`
	Selected    bool      `json:"selected"`
}

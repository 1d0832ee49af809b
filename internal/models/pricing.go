package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// PRICING ENGINE INPUT / OUTPUT
// ============================================================================

// VehicleValues carries the two insured sums used by value-based methods.
type VehicleValues struct {
	// Current is the venal (present market) value.
	Current float64 `json:"current"`
	// New is the original/replacement purchase price.
	New float64 `json:"new"`
}

// Vehicle describes the vehicle being quoted. Supplied fresh on every
// calculation call, never persisted by this service.
type Vehicle struct {
	CategoryCode string        `json:"category_code"`
	Energy       string        `json:"energy"`
	FiscalPower  int           `json:"fiscal_power"`
	Values       VehicleValues `json:"values"`
	SeatCount    int           `json:"seat_count"`
	Usage        string        `json:"usage,omitempty"`
}

// PricingParameters carries the caller's method-specific choices.
type PricingParameters struct {
	// ChosenFranchise selects the collision matrix deductible.
	ChosenFranchise *float64 `json:"chosen_franchise,omitempty"`
	// ChosenFormula selects the injury formula number (default 1).
	ChosenFormula *int `json:"chosen_formula,omitempty"`
}

type PricingRequest struct {
	Vehicle      *Vehicle          `json:"vehicle"`
	Mode         PricingMode       `json:"mode"`
	GuaranteeIDs []uuid.UUID       `json:"guarantee_ids,omitempty"`
	PackageID    *uuid.UUID        `json:"package_id,omitempty"`
	Parameters   PricingParameters `json:"parameters"`
}

// GuaranteeBreakdown is one priced line of the quote. CalculationDetails
// echoes the inputs actually used, for audit only.
type GuaranteeBreakdown struct {
	Guarantee          Guarantee      `json:"guarantee"`
	BasePrice          float64        `json:"base_price"`
	CalculatedPrice    float64        `json:"calculated_price"`
	MethodLabel        string         `json:"method_label"`
	CalculationDetails map[string]any `json:"calculation_details"`
}

// PricingResult is created fresh per calculation and owned by the caller.
type PricingResult struct {
	TotalBasePrice      float64              `json:"total_base_price"`
	TotalWithGuarantees float64              `json:"total_with_guarantees"`
	Breakdown           []GuaranteeBreakdown `json:"breakdown"`
	SelectedPackage     *InsurancePackage    `json:"selected_package,omitempty"`
	CalculatedAt        time.Time            `json:"calculated_at"`
}

// ValidationResult reports precondition failures as human-readable strings,
// never as errors.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

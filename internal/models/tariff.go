package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// TARIFF GRIDS
// ============================================================================

// RCTariffRow prices civil liability by vehicle category, energy and fiscal
// power band. Rows for a category+energy pair partition the power axis;
// gaps resolve to "no match", never an error.
type RCTariffRow struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Category  string    `json:"category" db:"category"`
	Energy    string    `json:"energy" db:"energy"`
	PowerMin  int       `json:"power_min" db:"power_min"`
	PowerMax  int       `json:"power_max" db:"power_max"`
	Premium   float64   `json:"premium" db:"premium"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InjuryTariffRow prices IC (driver) and IPT (passenger) coverage per formula
// number. SeatCount 0 is a wildcard matching any seat count.
type InjuryTariffRow struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	CoverageKind  InjuryCoverageKind `json:"coverage_kind" db:"coverage_kind"`
	FormulaNumber int                `json:"formula_number" db:"formula_number"`
	SeatCount     int                `json:"seat_count" db:"seat_count"`
	Premium       float64            `json:"premium" db:"premium"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// CollisionTariffRow prices TCM/TCL coverage: a rate percentage of the
// vehicle's new value, keyed by category, collision kind, franchise and
// new-value band.
type CollisionTariffRow struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Category      string        `json:"category" db:"category"`
	GuaranteeKind CollisionKind `json:"guarantee_kind" db:"guarantee_kind"`
	NewValueMin   float64       `json:"new_value_min" db:"new_value_min"`
	NewValueMax   float64       `json:"new_value_max" db:"new_value_max"`
	Franchise     float64       `json:"franchise" db:"franchise"`
	RatePercent   float64       `json:"rate_percent" db:"rate_percent"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// FixedTariffRow is a flat-premium tariff entry, optionally carrying a
// reduced price for package bundles.
type FixedTariffRow struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	GuaranteeName      string    `json:"guarantee_name" db:"guarantee_name"`
	Premium            float64   `json:"premium" db:"premium"`
	EligibilityNote    *string   `json:"eligibility_note,omitempty" db:"eligibility_note"`
	ReducedBundlePrice *float64  `json:"reduced_bundle_price,omitempty" db:"reduced_bundle_price"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// TariffGridSnapshot is one wholesale load of all four grids. Snapshots are
// replaced as a unit on reload, never merged incrementally.
type TariffGridSnapshot struct {
	RC        []RCTariffRow        `json:"rc"`
	Injury    []InjuryTariffRow    `json:"injury"`
	Collision []CollisionTariffRow `json:"collision"`
	Fixed     []FixedTariffRow     `json:"fixed"`
	LoadedAt  time.Time            `json:"loaded_at"`
}

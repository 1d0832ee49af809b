package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"tarification-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// GUARANTEE CATALOG
// ============================================================================

// MethodParams carries the method-specific inputs of a guarantee as a closed
// union: exactly the variant matching the guarantee's calculation method is
// populated, the rest stay nil. Stored as JSONB.
type MethodParams struct {
	FixedAmount *FixedAmountParams     `json:"fixed_amount,omitempty"`
	Conditional *ConditionalRateParams `json:"conditional_rate,omitempty"`
	Extra       utils.JSONMap          `json:"extra,omitempty"`
}

type FixedAmountParams struct {
	Amount float64 `json:"amount"`
	// ReducedBundlePrice overrides Amount when the guarantee is priced as
	// part of a package, never in tailor-made mode.
	ReducedBundlePrice *float64 `json:"reduced_bundle_price,omitempty"`
}

type ConditionalRateParams struct {
	Condition *RateCondition `json:"condition,omitempty"`
	// Expression holds a legacy string-encoded condition ("venale<=25000000")
	// kept only until the catalog row is re-saved with a parsed Condition.
	Expression  string   `json:"expression,omitempty"`
	RateIfTrue  *float64 `json:"rate_if_true,omitempty"`
	RateIfFalse *float64 `json:"rate_if_false,omitempty"`
}

// ResolvedCondition returns the parsed condition, falling back to the legacy
// expression. Returns nil when neither yields a usable condition.
func (p *ConditionalRateParams) ResolvedCondition() *RateCondition {
	if p == nil {
		return nil
	}
	if p.Condition != nil {
		return p.Condition
	}
	if p.Expression != "" {
		if cond, err := ParseRateCondition(p.Expression); err == nil {
			return cond
		}
	}
	return nil
}

func (p MethodParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *MethodParams) Scan(value any) error {
	if value == nil {
		*p = MethodParams{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("MethodParams: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, p)
}

type Guarantee struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	Name              string             `json:"name" db:"name"`
	Code              string             `json:"code" db:"code"`
	Category          GuaranteeCategory  `json:"category" db:"category"`
	CalculationMethod CalculationMethod  `json:"calculation_method" db:"calculation_method"`
	IsOptional        bool               `json:"is_optional" db:"is_optional"`
	IsActive          bool               `json:"is_active" db:"is_active"`
	Rate              float64            `json:"rate" db:"rate"`
	MinValue          *float64           `json:"min_value,omitempty" db:"min_value"`
	MaxValue          *float64           `json:"max_value,omitempty" db:"max_value"`
	Parameters        MethodParams       `json:"parameters" db:"parameters"`
	FranchiseOptions  utils.Float64Slice `json:"franchise_options,omitempty" db:"franchise_options"`
	Conditions        *string            `json:"conditions,omitempty" db:"conditions"`
	CreatedBy         *string            `json:"created_by,omitempty" db:"created_by"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// CollisionKind maps the guarantee's category onto the collision matrix axis.
func (g *Guarantee) CollisionKind() (CollisionKind, bool) {
	switch g.Category {
	case CategoryFullCollision:
		return CollisionFull, true
	case CategoryIdentifiedCollision:
		return CollisionIdentified, true
	default:
		return "", false
	}
}

// InjuryKind maps the guarantee's category onto the injury grid axis.
func (g *Guarantee) InjuryKind() (InjuryCoverageKind, bool) {
	switch g.Category {
	case CategoryDriverInjury:
		return InjuryDriver, true
	case CategoryPassengerInjury:
		return InjuryPassenger, true
	default:
		return "", false
	}
}

// ReducedBundlePrice returns the package-mode override for a fixed-amount
// guarantee, nil when none is configured.
func (g *Guarantee) ReducedBundlePrice() *float64 {
	if g.Parameters.FixedAmount == nil {
		return nil
	}
	return g.Parameters.FixedAmount.ReducedBundlePrice
}

// GuaranteeTariffRule is the one-to-one sidecar record tracking the fixed
// amount of a fixed-amount guarantee. Reads merge its amount over whatever
// stale value the guarantee row itself carries.
type GuaranteeTariffRule struct {
	GuaranteeID uuid.UUID `json:"guarantee_id" db:"guarantee_id"`
	Amount      float64   `json:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

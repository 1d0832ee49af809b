package models

type GuaranteeCategory string

const (
	CategoryCivilLiability      GuaranteeCategory = "civil_liability"
	CategoryLegalDefense        GuaranteeCategory = "legal_defense"
	CategoryDriverInjury        GuaranteeCategory = "driver_injury"
	CategoryPassengerInjury     GuaranteeCategory = "passenger_injury"
	CategoryFire                GuaranteeCategory = "fire"
	CategoryTheft               GuaranteeCategory = "theft"
	CategoryArmedTheft          GuaranteeCategory = "armed_theft"
	CategoryGlassBreakage       GuaranteeCategory = "glass_breakage"
	CategoryFullCollision       GuaranteeCategory = "full_collision"
	CategoryIdentifiedCollision GuaranteeCategory = "identified_collision"
	CategoryAssistance          GuaranteeCategory = "assistance"
	CategoryRecourseAdvance     GuaranteeCategory = "recourse_advance"
	CategoryAccessories         GuaranteeCategory = "accessories"
)

type CalculationMethod string

const (
	MethodFree               CalculationMethod = "free"
	MethodFixedAmount        CalculationMethod = "fixed_amount"
	MethodRateOnCurrentValue CalculationMethod = "rate_on_current_value"
	MethodRateOnNewValue     CalculationMethod = "rate_on_new_value"
	MethodCivilLiability     CalculationMethod = "civil_liability_tariff"
	MethodCollisionMatrix    CalculationMethod = "collision_matrix"
	MethodInjuryFormula      CalculationMethod = "injury_formula"
	MethodConditionalRate    CalculationMethod = "conditional_rate"
)

// Label returns the human-readable method name used in pricing breakdowns.
func (m CalculationMethod) Label() string {
	switch m {
	case MethodFree:
		return "Free"
	case MethodFixedAmount:
		return "Fixed amount"
	case MethodRateOnCurrentValue:
		return "Rate on current value"
	case MethodRateOnNewValue:
		return "Rate on new value"
	case MethodCivilLiability:
		return "Civil liability tariff (RC)"
	case MethodCollisionMatrix:
		return "Collision matrix (TCM/TCL)"
	case MethodInjuryFormula:
		return "Injury formula (IC/IPT)"
	case MethodConditionalRate:
		return "Conditional rate"
	default:
		return string(m)
	}
}

// CollisionKind distinguishes the two collision guarantees in the collision
// tariff matrix.
type CollisionKind string

const (
	CollisionFull       CollisionKind = "full_collision"       // TCM
	CollisionIdentified CollisionKind = "identified_collision" // TCL
)

// InjuryCoverageKind selects the IC (driver) or IPT (passenger) side of the
// injury tariff grid.
type InjuryCoverageKind string

const (
	InjuryDriver    InjuryCoverageKind = "driver"
	InjuryPassenger InjuryCoverageKind = "passenger"
)

type PricingMode string

const (
	PricingTailorMade PricingMode = "tailor_made"
	PricingPackage    PricingMode = "package"
)

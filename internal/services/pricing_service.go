package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tarification-service/internal/models"

	"github.com/google/uuid"
)

const (
	// Conditional-rate fallbacks when a guarantee omits its rates (percent).
	defaultRateIfTrue  = 1.1
	defaultRateIfFalse = 2.1

	// Injury formula assumed when the caller picks none.
	defaultInjuryFormula = 1

	// Flat surcharge per selected guarantee for the quick estimate. Chosen
	// as a rough catalog-wide average; the estimate is never authoritative.
	quickEstimateSurcharge = 15000.0
)

// PricingService is the calculation engine: it resolves the requested
// guarantee set, prices each guarantee by its calculation method, clamps and
// accumulates. Only an explicit package miss is fatal; every other miss
// degrades to a zero contribution so a quote always completes.
type PricingService struct {
	guarantees GuaranteeResolver
	packages   PackageResolver
	grids      GridLookup
}

func NewPricingService(guarantees GuaranteeResolver, packages PackageResolver, grids GridLookup) *PricingService {
	return &PricingService{guarantees: guarantees, packages: packages, grids: grids}
}

// resolvedRequest is the common shape both pricing modes funnel into: the
// guarantee list to price and the bundle base price (0 in tailor-made mode).
type resolvedRequest struct {
	guarantees []models.Guarantee
	basePrice  float64
	pkg        *models.InsurancePackage
	bundle     bool
}

// CalculatePrice produces the authoritative quote. Callers are expected to
// run Validate first; requests that skip it fail with ErrValidation.
func (s *PricingService) CalculatePrice(req models.PricingRequest) (*models.PricingResult, error) {
	if req.Vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle is required", models.ErrValidation)
	}

	resolved, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	result := &models.PricingResult{
		TotalBasePrice:  resolved.basePrice,
		SelectedPackage: resolved.pkg,
		Breakdown:       []models.GuaranteeBreakdown{},
		CalculatedAt:    time.Now(),
	}

	for i := range resolved.guarantees {
		guarantee := &resolved.guarantees[i]
		if !guarantee.IsActive {
			continue
		}

		raw, details, err := s.priceGuarantee(req.Vehicle, guarantee, req.Parameters, resolved.bundle)
		if err != nil {
			return nil, err
		}

		price := applyClamp(guarantee, raw)
		if price != raw {
			details["raw_price"] = raw
		}

		result.TotalWithGuarantees += price
		result.Breakdown = append(result.Breakdown, models.GuaranteeBreakdown{
			Guarantee:          *guarantee,
			BasePrice:          guarantee.Rate,
			CalculatedPrice:    price,
			MethodLabel:        guarantee.CalculationMethod.Label(),
			CalculationDetails: details,
		})
	}

	// The bundle base price enters the total exactly once, after the loop.
	if resolved.bundle {
		result.TotalWithGuarantees += resolved.basePrice
	}

	return result, nil
}

func (s *PricingService) resolve(req models.PricingRequest) (*resolvedRequest, error) {
	switch req.Mode {
	case models.PricingPackage:
		if req.PackageID == nil {
			return nil, fmt.Errorf("%w: package mode requires a package id", models.ErrValidation)
		}
		return s.resolvePackage(*req.PackageID)
	case models.PricingTailorMade:
		return s.resolveTailorMade(req.GuaranteeIDs)
	default:
		return nil, fmt.Errorf("%w: unknown pricing mode %q", models.ErrValidation, req.Mode)
	}
}

func (s *PricingService) resolvePackage(packageID uuid.UUID) (*resolvedRequest, error) {
	pkg, err := s.packages.GetPackage(packageID)
	if err != nil {
		// A missing package is the one hard failure: no partial result.
		return nil, err
	}

	guarantees, err := s.resolveGuarantees(pkg.GuaranteeIDs)
	if err != nil {
		return nil, err
	}

	return &resolvedRequest{
		guarantees: guarantees,
		basePrice:  pkg.BasePrice,
		pkg:        pkg,
		bundle:     true,
	}, nil
}

func (s *PricingService) resolveTailorMade(guaranteeIDs []uuid.UUID) (*resolvedRequest, error) {
	guarantees, err := s.resolveGuarantees(guaranteeIDs)
	if err != nil {
		return nil, err
	}

	return &resolvedRequest{guarantees: guarantees}, nil
}

// resolveGuarantees fetches each id, silently skipping ids that no longer
// resolve. Storage failures still propagate.
func (s *PricingService) resolveGuarantees(ids []uuid.UUID) ([]models.Guarantee, error) {
	guarantees := make([]models.Guarantee, 0, len(ids))
	for _, id := range ids {
		guarantee, err := s.guarantees.GetGuarantee(id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				slog.Warn("skipping unresolved guarantee id", "guarantee_id", id)
				continue
			}
			return nil, err
		}
		guarantees = append(guarantees, *guarantee)
	}
	return guarantees, nil
}

func (s *PricingService) priceGuarantee(vehicle *models.Vehicle, guarantee *models.Guarantee, params models.PricingParameters, bundle bool) (float64, map[string]any, error) {
	switch guarantee.CalculationMethod {
	case models.MethodFree:
		return 0, map[string]any{}, nil

	case models.MethodFixedAmount:
		amount := guarantee.Rate
		bundleOverride := false
		if bundle {
			if reduced := guarantee.ReducedBundlePrice(); reduced != nil {
				amount = *reduced
				bundleOverride = true
			}
		}
		return amount, map[string]any{
			"amount":          amount,
			"bundle_override": bundleOverride,
		}, nil

	case models.MethodRateOnCurrentValue:
		return guarantee.Rate / 100 * vehicle.Values.Current, map[string]any{
			"rate_percent":  guarantee.Rate,
			"current_value": vehicle.Values.Current,
		}, nil

	case models.MethodRateOnNewValue:
		return guarantee.Rate / 100 * vehicle.Values.New, map[string]any{
			"rate_percent": guarantee.Rate,
			"new_value":    vehicle.Values.New,
		}, nil

	case models.MethodCivilLiability:
		premium, err := s.grids.LookupRC(vehicle.CategoryCode, vehicle.Energy, vehicle.FiscalPower)
		if err != nil {
			return 0, nil, err
		}
		return premium, map[string]any{
			"category":     vehicle.CategoryCode,
			"energy":       vehicle.Energy,
			"fiscal_power": vehicle.FiscalPower,
		}, nil

	case models.MethodCollisionMatrix:
		return s.priceCollision(vehicle, guarantee, params)

	case models.MethodInjuryFormula:
		return s.priceInjury(vehicle, guarantee, params)

	case models.MethodConditionalRate:
		price, details := s.priceConditional(vehicle, guarantee)
		return price, details, nil

	default:
		slog.Warn("unknown calculation method priced at zero",
			"guarantee_id", guarantee.ID, "method", guarantee.CalculationMethod)
		return 0, map[string]any{}, nil
	}
}

func (s *PricingService) priceCollision(vehicle *models.Vehicle, guarantee *models.Guarantee, params models.PricingParameters) (float64, map[string]any, error) {
	kind, ok := guarantee.CollisionKind()
	if !ok {
		slog.Warn("collision-matrix guarantee without a collision category",
			"guarantee_id", guarantee.ID, "category", guarantee.Category)
		return 0, map[string]any{"reason": "category is not a collision kind"}, nil
	}

	if params.ChosenFranchise == nil {
		return 0, map[string]any{"reason": "no franchise chosen"}, nil
	}

	premium, err := s.grids.LookupCollision(vehicle.CategoryCode, kind, *params.ChosenFranchise, vehicle.Values.New)
	if err != nil {
		return 0, nil, err
	}

	return premium, map[string]any{
		"category":       vehicle.CategoryCode,
		"guarantee_kind": string(kind),
		"franchise":      *params.ChosenFranchise,
		"new_value":      vehicle.Values.New,
	}, nil
}

func (s *PricingService) priceInjury(vehicle *models.Vehicle, guarantee *models.Guarantee, params models.PricingParameters) (float64, map[string]any, error) {
	kind, ok := guarantee.InjuryKind()
	if !ok {
		slog.Warn("injury-formula guarantee without an injury category",
			"guarantee_id", guarantee.ID, "category", guarantee.Category)
		return 0, map[string]any{"reason": "category is not an injury kind"}, nil
	}

	formula := defaultInjuryFormula
	if params.ChosenFormula != nil {
		formula = *params.ChosenFormula
	}

	// Seat count only drives passenger lookups; driver rows are priced per
	// formula regardless of seats.
	seatCount := vehicle.SeatCount
	if kind == models.InjuryDriver {
		seatCount = 0
	}

	premium, err := s.grids.LookupInjury(kind, formula, seatCount)
	if err != nil {
		return 0, nil, err
	}

	return premium, map[string]any{
		"coverage_kind": string(kind),
		"formula":       formula,
		"seat_count":    seatCount,
	}, nil
}

func (s *PricingService) priceConditional(vehicle *models.Vehicle, guarantee *models.Guarantee) (float64, map[string]any) {
	params := guarantee.Parameters.Conditional

	matched := false
	conditionEcho := ""
	if params != nil {
		if cond := params.ResolvedCondition(); cond != nil {
			matched = cond.Evaluate(vehicle.Values.Current)
			conditionEcho = fmt.Sprintf("%s %s %v", cond.Field, cond.Operator, cond.Threshold)
		} else if params.Expression != "" {
			// Malformed legacy expression: fail closed, price at the
			// unfavourable rate.
			slog.Warn("malformed rate condition treated as false",
				"guarantee_id", guarantee.ID, "expression", params.Expression)
			conditionEcho = params.Expression
		}
	}

	rate := defaultRateIfFalse
	if matched {
		rate = defaultRateIfTrue
		if params != nil && params.RateIfTrue != nil {
			rate = *params.RateIfTrue
		}
	} else if params != nil && params.RateIfFalse != nil {
		rate = *params.RateIfFalse
	}

	price := rate / 100 * vehicle.Values.Current

	return price, map[string]any{
		"condition":     conditionEcho,
		"matched":       matched,
		"rate_percent":  rate,
		"current_value": vehicle.Values.Current,
	}
}

// applyClamp raises the price to MinValue then lowers it to MaxValue, in
// that order: when the raw price sits below both bounds, the min wins.
func applyClamp(guarantee *models.Guarantee, raw float64) float64 {
	price := raw
	if guarantee.MinValue != nil && price < *guarantee.MinValue {
		price = *guarantee.MinValue
	}
	if guarantee.MaxValue != nil && price > *guarantee.MaxValue {
		price = *guarantee.MaxValue
	}
	return price
}

// Validate checks a pricing request's preconditions and reports failures as
// human-readable strings. It is called by convention before CalculatePrice,
// never implicitly.
func (s *PricingService) Validate(req models.PricingRequest) models.ValidationResult {
	var errs []string

	if req.Vehicle == nil {
		errs = append(errs, "a vehicle description is required")
	}

	var ids []uuid.UUID
	switch req.Mode {
	case models.PricingPackage:
		if req.PackageID == nil {
			errs = append(errs, "package mode requires a package id")
		} else if pkg, err := s.packages.GetPackage(*req.PackageID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				errs = append(errs, fmt.Sprintf("package %s does not exist", req.PackageID))
			} else {
				errs = append(errs, "the package catalog could not be read")
			}
		} else {
			ids = pkg.GuaranteeIDs
		}
	case models.PricingTailorMade:
		if len(req.GuaranteeIDs) == 0 {
			errs = append(errs, "tailor-made mode requires at least one guarantee id")
		}
		ids = req.GuaranteeIDs
	default:
		errs = append(errs, fmt.Sprintf("unknown pricing mode %q", req.Mode))
	}

	for _, id := range ids {
		guarantee, err := s.guarantees.GetGuarantee(id)
		if err != nil {
			// Unresolved ids are skipped by the calculation as well.
			continue
		}

		switch guarantee.CalculationMethod {
		case models.MethodCollisionMatrix:
			if req.Parameters.ChosenFranchise == nil {
				errs = append(errs, fmt.Sprintf("guarantee %q requires a chosen franchise", guarantee.Name))
			}
		case models.MethodInjuryFormula:
			if req.Parameters.ChosenFormula == nil {
				errs = append(errs, fmt.Sprintf("guarantee %q requires a chosen formula", guarantee.Name))
			}
		}
	}

	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// QuickEstimate is the approximate live-feedback figure: base price plus a
// flat surcharge per selected guarantee. It shares nothing with
// CalculatePrice and must never be presented as authoritative; its only
// guarantee is monotonic non-decrease as selections grow.
func (s *PricingService) QuickEstimate(basePrice float64, selections []models.QuickEstimateSelection) float64 {
	selected := 0
	for _, selection := range selections {
		if selection.Selected {
			selected++
		}
	}
	return basePrice + float64(selected)*quickEstimateSurcharge
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tarification-service/internal/event"
	"tarification-service/internal/models"
	"tarification-service/internal/utils"

	"github.com/google/uuid"
)

const guaranteeCodeMaxLen = 32

// GuaranteeService owns the guarantee catalog: CRUD, code derivation and the
// fixed-amount sidecar tariff rule lifecycle.
type GuaranteeService struct {
	store  GuaranteeStore
	events *event.CatalogPublisher
}

// NewGuaranteeService creates the catalog service. events may be nil;
// publishing is best effort and never fails an operation.
func NewGuaranteeService(store GuaranteeStore, events *event.CatalogPublisher) *GuaranteeService {
	return &GuaranteeService{store: store, events: events}
}

func (s *GuaranteeService) CreateGuarantee(req models.CreateGuaranteeRequest) (*models.Guarantee, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	code, err := s.resolveCode(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	guarantee := &models.Guarantee{
		ID:                uuid.New(),
		Name:              req.Name,
		Code:              code,
		Category:          req.Category,
		CalculationMethod: req.CalculationMethod,
		IsOptional:        true,
		IsActive:          true,
		Rate:              req.Rate,
		MinValue:          req.MinValue,
		MaxValue:          req.MaxValue,
		Parameters:        req.Parameters,
		FranchiseOptions:  req.FranchiseOptions,
		Conditions:        req.Conditions,
		CreatedBy:         req.CreatedBy,
	}

	if req.IsOptional != nil {
		guarantee.IsOptional = *req.IsOptional
	}
	if req.IsActive != nil {
		guarantee.IsActive = *req.IsActive
	}

	if err := s.store.Create(guarantee, s.ruleAmountForCreate(guarantee, req)); err != nil {
		return nil, fmt.Errorf("failed to create guarantee: %w", err)
	}

	s.publish("guarantee", guarantee.ID.String(), "created")

	return s.mergeTariffRule(guarantee)
}

// ruleAmountForCreate picks the sidecar amount for a new fixed-amount
// guarantee: explicit fixed_amount wins, then the parameter variant, then
// the plain rate.
func (s *GuaranteeService) ruleAmountForCreate(guarantee *models.Guarantee, req models.CreateGuaranteeRequest) *float64 {
	if guarantee.CalculationMethod != models.MethodFixedAmount {
		return nil
	}
	if req.FixedAmount != nil {
		return req.FixedAmount
	}
	if guarantee.Parameters.FixedAmount != nil {
		amount := guarantee.Parameters.FixedAmount.Amount
		return &amount
	}
	if guarantee.Rate > 0 {
		amount := guarantee.Rate
		return &amount
	}
	return nil
}

// resolveCode normalizes the supplied code, falls back to a code derived
// from the name, and finally to a slug plus random suffix. Uniqueness is
// best effort only: the check and the insert are not one transaction.
func (s *GuaranteeService) resolveCode(rawCode, name string) (string, error) {
	code := utils.NormalizeCode(rawCode, guaranteeCodeMaxLen)
	if code == "" {
		code = utils.NormalizeCode(name, guaranteeCodeMaxLen)
	}

	if code != "" {
		exists, err := s.store.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	slug := utils.NormalizeCode(name, guaranteeCodeMaxLen-8)
	if slug == "" {
		slug = "GAR"
	}
	return slug + "_" + utils.GenerateRandomStringWithLength(6), nil
}

func (s *GuaranteeService) GetGuarantee(id uuid.UUID) (*models.Guarantee, error) {
	guarantee, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guarantee: %w", err)
	}

	return s.mergeTariffRule(guarantee)
}

func (s *GuaranteeService) ListGuarantees() ([]models.Guarantee, error) {
	guarantees, err := s.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list guarantees: %w", err)
	}

	return s.mergeTariffRules(guarantees)
}

func (s *GuaranteeService) ListGuaranteesByCategory(category models.GuaranteeCategory) ([]models.Guarantee, error) {
	guarantees, err := s.store.GetActiveByCategory(category)
	if err != nil {
		return nil, fmt.Errorf("failed to list guarantees by category: %w", err)
	}

	return s.mergeTariffRules(guarantees)
}

func (s *GuaranteeService) UpdateGuarantee(id uuid.UUID, req models.UpdateGuaranteeRequest) (*models.Guarantee, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	guarantee, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guarantee: %w", err)
	}

	wasFixedAmount := guarantee.CalculationMethod == models.MethodFixedAmount

	if req.Name != nil {
		guarantee.Name = *req.Name
	}
	if req.Code != nil {
		guarantee.Code = utils.NormalizeCode(*req.Code, guaranteeCodeMaxLen)
	}
	if req.Category != nil {
		guarantee.Category = *req.Category
	}
	if req.CalculationMethod != nil {
		guarantee.CalculationMethod = *req.CalculationMethod
	}
	if req.IsOptional != nil {
		guarantee.IsOptional = *req.IsOptional
	}
	if req.IsActive != nil {
		guarantee.IsActive = *req.IsActive
	}
	if req.Rate != nil {
		guarantee.Rate = *req.Rate
	}
	if req.MinValue != nil {
		guarantee.MinValue = req.MinValue
	}
	if req.MaxValue != nil {
		guarantee.MaxValue = req.MaxValue
	}
	if req.Parameters != nil {
		guarantee.Parameters = *req.Parameters
	}
	if req.FranchiseOptions != nil {
		guarantee.FranchiseOptions = *req.FranchiseOptions
	}
	if req.Conditions != nil {
		guarantee.Conditions = req.Conditions
	}

	// Sidecar rule lifecycle: the rule only exists while the guarantee is
	// fixed-amount with a tracked amount. Moving to another method or
	// clearing the amount removes it.
	isFixedAmount := guarantee.CalculationMethod == models.MethodFixedAmount
	deleteRule := req.ClearFixedAmount || (wasFixedAmount && !isFixedAmount)

	var fixedAmount *float64
	if isFixedAmount && !deleteRule && req.FixedAmount != nil {
		fixedAmount = req.FixedAmount
	}

	if err := s.store.Update(guarantee, fixedAmount, deleteRule); err != nil {
		return nil, fmt.Errorf("failed to update guarantee: %w", err)
	}

	s.publish("guarantee", guarantee.ID.String(), "updated")

	return s.mergeTariffRule(guarantee)
}

func (s *GuaranteeService) DeleteGuarantee(id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete guarantee: %w", err)
	}

	s.publish("guarantee", id.String(), "deleted")

	return nil
}

// ToggleActive flips the guarantee's active flag and returns the new state.
func (s *GuaranteeService) ToggleActive(id uuid.UUID) (*models.Guarantee, error) {
	guarantee, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get guarantee: %w", err)
	}

	guarantee.IsActive = !guarantee.IsActive

	if err := s.store.Update(guarantee, nil, false); err != nil {
		return nil, fmt.Errorf("failed to toggle guarantee: %w", err)
	}

	s.publish("guarantee", guarantee.ID.String(), "updated")

	return s.mergeTariffRule(guarantee)
}

// mergeTariffRule overlays the sidecar rule amount over whatever stale value
// the guarantee row embeds, for fixed-amount guarantees only.
func (s *GuaranteeService) mergeTariffRule(guarantee *models.Guarantee) (*models.Guarantee, error) {
	if guarantee.CalculationMethod != models.MethodFixedAmount {
		return guarantee, nil
	}

	rule, err := s.store.GetTariffRule(guarantee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tariff rule: %w", err)
	}
	if rule == nil {
		return guarantee, nil
	}

	guarantee.Rate = rule.Amount
	if guarantee.Parameters.FixedAmount == nil {
		guarantee.Parameters.FixedAmount = &models.FixedAmountParams{}
	}
	guarantee.Parameters.FixedAmount.Amount = rule.Amount

	return guarantee, nil
}

func (s *GuaranteeService) mergeTariffRules(guarantees []models.Guarantee) ([]models.Guarantee, error) {
	for i := range guarantees {
		if _, err := s.mergeTariffRule(&guarantees[i]); err != nil {
			return nil, err
		}
	}
	return guarantees, nil
}

func (s *GuaranteeService) publish(entityType, entityID, action string) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt := event.CatalogEvent{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		slog.Error("failed to publish catalog event", "entity_type", entityType, "action", action, "error", err)
	}
}

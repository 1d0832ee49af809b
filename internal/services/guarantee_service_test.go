package services

import (
	"fmt"
	"strings"
	"testing"

	"tarification-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// fakeGuaranteeStore keeps guarantees and sidecar rules in memory.
type fakeGuaranteeStore struct {
	guarantees map[uuid.UUID]*models.Guarantee
	rules      map[uuid.UUID]float64
}

func newFakeGuaranteeStore() *fakeGuaranteeStore {
	return &fakeGuaranteeStore{
		guarantees: map[uuid.UUID]*models.Guarantee{},
		rules:      map[uuid.UUID]float64{},
	}
}

func (f *fakeGuaranteeStore) Create(guarantee *models.Guarantee, fixedAmount *float64) error {
	stored := *guarantee
	f.guarantees[stored.ID] = &stored
	if fixedAmount != nil {
		f.rules[stored.ID] = *fixedAmount
	}
	return nil
}

func (f *fakeGuaranteeStore) GetByID(id uuid.UUID) (*models.Guarantee, error) {
	guarantee, ok := f.guarantees[id]
	if !ok {
		return nil, fmt.Errorf("%w: guarantee %s", models.ErrNotFound, id)
	}
	copied := *guarantee
	return &copied, nil
}

func (f *fakeGuaranteeStore) GetAll() ([]models.Guarantee, error) {
	all := make([]models.Guarantee, 0, len(f.guarantees))
	for _, guarantee := range f.guarantees {
		all = append(all, *guarantee)
	}
	return all, nil
}

func (f *fakeGuaranteeStore) GetActiveByCategory(category models.GuaranteeCategory) ([]models.Guarantee, error) {
	var matched []models.Guarantee
	for _, guarantee := range f.guarantees {
		if guarantee.Category == category && guarantee.IsActive {
			matched = append(matched, *guarantee)
		}
	}
	return matched, nil
}

func (f *fakeGuaranteeStore) CodeExists(code string) (bool, error) {
	for _, guarantee := range f.guarantees {
		if guarantee.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGuaranteeStore) Update(guarantee *models.Guarantee, fixedAmount *float64, deleteRule bool) error {
	stored := *guarantee
	f.guarantees[stored.ID] = &stored
	if deleteRule {
		delete(f.rules, stored.ID)
	} else if fixedAmount != nil {
		f.rules[stored.ID] = *fixedAmount
	}
	return nil
}

func (f *fakeGuaranteeStore) Delete(id uuid.UUID) error {
	if _, ok := f.guarantees[id]; !ok {
		return fmt.Errorf("%w: guarantee %s", models.ErrNotFound, id)
	}
	delete(f.guarantees, id)
	delete(f.rules, id)
	return nil
}

func (f *fakeGuaranteeStore) GetTariffRule(guaranteeID uuid.UUID) (*models.GuaranteeTariffRule, error) {
	amount, ok := f.rules[guaranteeID]
	if !ok {
		return nil, nil
	}
	return &models.GuaranteeTariffRule{GuaranteeID: guaranteeID, Amount: amount}, nil
}

func newGuaranteeServiceFixture() (*GuaranteeService, *fakeGuaranteeStore) {
	store := newFakeGuaranteeStore()
	return NewGuaranteeService(store, nil), store
}

// ============================================================================
// TEST SUITE 1: CREATE AND CODE DERIVATION
// ============================================================================

func TestCreateGuarantee_Defaults(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFree,
	})
	require.NoError(t, err)

	assert.True(t, guarantee.IsOptional)
	assert.True(t, guarantee.IsActive)
	assert.NotEqual(t, uuid.Nil, guarantee.ID)
}

func TestCreateGuarantee_CodeDerivedFromName(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Bris de Glaces",
		Category:          models.CategoryGlassBreakage,
		CalculationMethod: models.MethodRateOnNewValue,
		Rate:              0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "BRIS_DE_GLACES", guarantee.Code)
}

func TestCreateGuarantee_ExplicitCodeNormalized(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Tierce Collision",
		Code:              "tcm matrix",
		Category:          models.CategoryFullCollision,
		CalculationMethod: models.MethodCollisionMatrix,
	})
	require.NoError(t, err)

	assert.Equal(t, "TCM_MATRIX", guarantee.Code)
}

func TestCreateGuarantee_DuplicateCodeGetsSuffix(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	first, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Incendie",
		Category:          models.CategoryFire,
		CalculationMethod: models.MethodRateOnCurrentValue,
		Rate:              0.45,
	})
	require.NoError(t, err)

	second, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Incendie",
		Category:          models.CategoryFire,
		CalculationMethod: models.MethodRateOnCurrentValue,
		Rate:              0.5,
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.Code, second.Code)
	assert.True(t, strings.HasPrefix(second.Code, "INCENDIE_"), "fallback code keeps the name slug, got %q", second.Code)
	assert.LessOrEqual(t, len(second.Code), guaranteeCodeMaxLen)
}

func TestCreateGuarantee_InvalidCategory(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	_, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Mystery",
		Category:          "mystery",
		CalculationMethod: models.MethodFree,
	})

	assert.ErrorIs(t, err, models.ErrValidation)
}

// ============================================================================
// TEST SUITE 2: SIDECAR TARIFF RULE
// ============================================================================

func TestCreateGuarantee_FixedAmountWritesRule(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		FixedAmount:       floatPtr(55000),
	})
	require.NoError(t, err)

	assert.Equal(t, 55000.0, store.rules[guarantee.ID])
	assert.Equal(t, 55000.0, guarantee.Rate, "the read merges the rule amount back")
}

func TestCreateGuarantee_RuleAmountFallsBackToRate(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		Rate:              42000,
	})
	require.NoError(t, err)

	assert.Equal(t, 42000.0, store.rules[guarantee.ID])
}

func TestGetGuarantee_MergesRuleOverStaleRow(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		FixedAmount:       floatPtr(55000),
	})
	require.NoError(t, err)

	// Simulate a rule updated out of band while the row keeps a stale rate.
	store.rules[guarantee.ID] = 60000

	fetched, err := service.GetGuarantee(guarantee.ID)
	require.NoError(t, err)

	assert.Equal(t, 60000.0, fetched.Rate)
	require.NotNil(t, fetched.Parameters.FixedAmount)
	assert.Equal(t, 60000.0, fetched.Parameters.FixedAmount.Amount)
}

func TestUpdateGuarantee_ClearFixedAmountDropsRule(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		FixedAmount:       floatPtr(55000),
	})
	require.NoError(t, err)

	_, err = service.UpdateGuarantee(guarantee.ID, models.UpdateGuaranteeRequest{ClearFixedAmount: true})
	require.NoError(t, err)

	_, ok := store.rules[guarantee.ID]
	assert.False(t, ok, "clearing removes the sidecar rule")
}

func TestUpdateGuarantee_MethodChangeDropsRule(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		FixedAmount:       floatPtr(55000),
	})
	require.NoError(t, err)

	method := models.MethodFree
	_, err = service.UpdateGuarantee(guarantee.ID, models.UpdateGuaranteeRequest{CalculationMethod: &method})
	require.NoError(t, err)

	_, ok := store.rules[guarantee.ID]
	assert.False(t, ok, "leaving fixed-amount removes the sidecar rule")
}

func TestUpdateGuarantee_FixedAmountAndClearAreExclusive(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	_, err := service.UpdateGuarantee(uuid.New(), models.UpdateGuaranteeRequest{
		FixedAmount:      floatPtr(55000),
		ClearFixedAmount: true,
	})

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteGuarantee_RemovesRule(t *testing.T) {
	service, store := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFixedAmount,
		FixedAmount:       floatPtr(55000),
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteGuarantee(guarantee.ID))

	_, ok := store.rules[guarantee.ID]
	assert.False(t, ok)
	_, err = service.GetGuarantee(guarantee.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ============================================================================
// TEST SUITE 3: LISTING AND TOGGLING
// ============================================================================

func TestListGuaranteesByCategory_OnlyActive(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	active, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Vol",
		Category:          models.CategoryTheft,
		CalculationMethod: models.MethodConditionalRate,
	})
	require.NoError(t, err)

	inactive := false
	_, err = service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Vol ancien",
		Category:          models.CategoryTheft,
		CalculationMethod: models.MethodConditionalRate,
		IsActive:          &inactive,
	})
	require.NoError(t, err)

	listed, err := service.ListGuaranteesByCategory(models.CategoryTheft)
	require.NoError(t, err)

	require.Len(t, listed, 1)
	assert.Equal(t, active.ID, listed[0].ID)
}

func TestToggleActive(t *testing.T) {
	service, _ := newGuaranteeServiceFixture()

	guarantee, err := service.CreateGuarantee(models.CreateGuaranteeRequest{
		Name:              "Assistance",
		Category:          models.CategoryAssistance,
		CalculationMethod: models.MethodFree,
	})
	require.NoError(t, err)
	require.True(t, guarantee.IsActive)

	toggled, err := service.ToggleActive(guarantee.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = service.ToggleActive(guarantee.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

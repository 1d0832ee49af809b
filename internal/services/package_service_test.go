package services

import (
	"fmt"
	"testing"

	"tarification-service/internal/models"
	"tarification-service/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type fakePackageStore struct {
	packages map[uuid.UUID]*models.InsurancePackage
}

func newFakePackageStore() *fakePackageStore {
	return &fakePackageStore{packages: map[uuid.UUID]*models.InsurancePackage{}}
}

func (f *fakePackageStore) Create(pkg *models.InsurancePackage) error {
	stored := *pkg
	f.packages[stored.ID] = &stored
	return nil
}

func (f *fakePackageStore) GetByID(id uuid.UUID) (*models.InsurancePackage, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, fmt.Errorf("%w: package %s", models.ErrNotFound, id)
	}
	copied := *pkg
	return &copied, nil
}

func (f *fakePackageStore) GetAll() ([]models.InsurancePackage, error) {
	all := make([]models.InsurancePackage, 0, len(f.packages))
	for _, pkg := range f.packages {
		all = append(all, *pkg)
	}
	return all, nil
}

func (f *fakePackageStore) CodeExists(code string) (bool, error) {
	for _, pkg := range f.packages {
		if pkg.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePackageStore) Update(pkg *models.InsurancePackage) error {
	stored := *pkg
	f.packages[stored.ID] = &stored
	return nil
}

func (f *fakePackageStore) Delete(id uuid.UUID) error {
	if _, ok := f.packages[id]; !ok {
		return fmt.Errorf("%w: package %s", models.ErrNotFound, id)
	}
	delete(f.packages, id)
	return nil
}

func newPackageServiceFixture() (*PackageService, *fakePackageStore) {
	store := newFakePackageStore()
	return NewPackageService(store, nil), store
}

// ============================================================================
// TEST SUITE: PACKAGE CATALOG
// ============================================================================

func TestCreatePackage_TotalPriceDefaultsToBasePrice(t *testing.T) {
	service, _ := newPackageServiceFixture()

	pkg, err := service.CreatePackage(models.CreatePackageRequest{
		Name:      "Essential",
		BasePrice: 87885,
	})
	require.NoError(t, err)

	assert.Equal(t, 87885.0, pkg.TotalPrice)
	assert.True(t, pkg.IsActive)
	assert.Equal(t, "ESSENTIAL", pkg.Code)
}

func TestCreatePackage_ExplicitTotalPrice(t *testing.T) {
	service, _ := newPackageServiceFixture()

	pkg, err := service.CreatePackage(models.CreatePackageRequest{
		Name:       "Confort",
		BasePrice:  87885,
		TotalPrice: floatPtr(150000),
	})
	require.NoError(t, err)

	assert.Equal(t, 150000.0, pkg.TotalPrice)
}

func TestCreatePackage_NegativeBasePriceRejected(t *testing.T) {
	service, _ := newPackageServiceFixture()

	_, err := service.CreatePackage(models.CreatePackageRequest{
		Name:      "Broken",
		BasePrice: -1,
	})

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdatePackage_GuaranteeListReplaced(t *testing.T) {
	service, _ := newPackageServiceFixture()

	pkg, err := service.CreatePackage(models.CreatePackageRequest{
		Name:         "Essential",
		GuaranteeIDs: []uuid.UUID{uuid.New()},
		BasePrice:    87885,
	})
	require.NoError(t, err)

	replacement := utils.UUIDSlice{uuid.New(), uuid.New()}
	updated, err := service.UpdatePackage(pkg.ID, models.UpdatePackageRequest{
		GuaranteeIDs: &replacement,
	})
	require.NoError(t, err)

	assert.Len(t, updated.GuaranteeIDs, 2)
	assert.Equal(t, 87885.0, updated.TotalPrice, "total price is never recomputed on membership edits")
}

func TestDeletePackage(t *testing.T) {
	service, _ := newPackageServiceFixture()

	pkg, err := service.CreatePackage(models.CreatePackageRequest{Name: "Essential"})
	require.NoError(t, err)

	require.NoError(t, service.DeletePackage(pkg.ID))

	_, err = service.GetPackage(pkg.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTogglePackageActive(t *testing.T) {
	service, _ := newPackageServiceFixture()

	pkg, err := service.CreatePackage(models.CreatePackageRequest{Name: "Essential"})
	require.NoError(t, err)
	require.True(t, pkg.IsActive)

	toggled, err := service.ToggleActive(pkg.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
}

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

// PackageService owns the package catalog. A package's TotalPrice is
// caller-supplied and is not recomputed when its guarantee list changes;
// callers re-save the package after editing membership.
type PackageService struct {
	store  PackageStore
	events *event.CatalogPublisher
}

func NewPackageService(store PackageStore, events *event.CatalogPublisher) *PackageService {
	return &PackageService{store: store, events: events}
}

func (s *PackageService) CreatePackage(req models.CreatePackageRequest) (*models.InsurancePackage, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	code := utils.NormalizeCode(req.Code, guaranteeCodeMaxLen)
	if code == "" {
		code = utils.NormalizeCode(req.Name, guaranteeCodeMaxLen)
	}
	if code != "" {
		exists, err := s.store.CodeExists(code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if exists {
			code = ""
		}
	}
	if code == "" {
		slug := utils.NormalizeCode(req.Name, guaranteeCodeMaxLen-8)
		if slug == "" {
			slug = "PACK"
		}
		code = slug + "_" + utils.GenerateRandomStringWithLength(6)
	}

	pkg := &models.InsurancePackage{
		ID:                      uuid.New(),
		Name:                    req.Name,
		Code:                    code,
		Description:             req.Description,
		GuaranteeIDs:            req.GuaranteeIDs,
		BasePrice:               req.BasePrice,
		TotalPrice:              req.BasePrice,
		VehicleTypeRestrictions: req.VehicleTypeRestrictions,
		IsActive:                true,
		CreatedBy:               req.CreatedBy,
	}

	if req.TotalPrice != nil {
		pkg.TotalPrice = *req.TotalPrice
	}
	if req.IsPopular != nil {
		pkg.IsPopular = *req.IsPopular
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}

	if err := s.store.Create(pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	s.publish(pkg.ID.String(), "created")

	return pkg, nil
}

func (s *PackageService) GetPackage(id uuid.UUID) (*models.InsurancePackage, error) {
	pkg, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	return pkg, nil
}

func (s *PackageService) ListPackages() ([]models.InsurancePackage, error) {
	pkgs, err := s.store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	return pkgs, nil
}

func (s *PackageService) UpdatePackage(id uuid.UUID, req models.UpdatePackageRequest) (*models.InsurancePackage, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	pkg, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	if req.Name != nil {
		pkg.Name = *req.Name
	}
	if req.Code != nil {
		pkg.Code = utils.NormalizeCode(*req.Code, guaranteeCodeMaxLen)
	}
	if req.Description != nil {
		pkg.Description = req.Description
	}
	if req.GuaranteeIDs != nil {
		pkg.GuaranteeIDs = *req.GuaranteeIDs
	}
	if req.BasePrice != nil {
		pkg.BasePrice = *req.BasePrice
	}
	if req.TotalPrice != nil {
		pkg.TotalPrice = *req.TotalPrice
	}
	if req.VehicleTypeRestrictions != nil {
		pkg.VehicleTypeRestrictions = *req.VehicleTypeRestrictions
	}
	if req.IsPopular != nil {
		pkg.IsPopular = *req.IsPopular
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}

	if err := s.store.Update(pkg); err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	s.publish(pkg.ID.String(), "updated")

	return pkg, nil
}

func (s *PackageService) DeletePackage(id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}

	s.publish(id.String(), "deleted")

	return nil
}

func (s *PackageService) ToggleActive(id uuid.UUID) (*models.InsurancePackage, error) {
	pkg, err := s.store.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}

	pkg.IsActive = !pkg.IsActive

	if err := s.store.Update(pkg); err != nil {
		return nil, fmt.Errorf("failed to toggle package: %w", err)
	}

	s.publish(pkg.ID.String(), "updated")

	return pkg, nil
}

func (s *PackageService) publish(entityID, action string) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	evt := event.CatalogEvent{
		EntityType: "package",
		EntityID:   entityID,
		Action:     action,
		OccurredAt: time.Now(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		slog.Error("failed to publish catalog event", "entity_type", "package", "action", action, "error", err)
	}
}

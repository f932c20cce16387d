package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

type UnitService struct {
	db         repositories.DB
	unitRepo   repositories.UnitRepository
	tenantRepo repositories.TenantRepository
}

func NewUnitService(db repositories.DB, unitRepo repositories.UnitRepository, tenantRepo repositories.TenantRepository) *UnitService {
	return &UnitService{db: db, unitRepo: unitRepo, tenantRepo: tenantRepo}
}

func (s *UnitService) Create(ctx context.Context, req *dtos.CreateUnitRequest) (*models.Unit, error) {
	status := models.UnitStatusType(req.Status)
	if status == "" {
		status = models.UnitStatusAvailable
	}

	u := &models.Unit{
		ID:            uuid.New(),
		PropertyID:    req.PropertyID,
		UnitNumber:    req.UnitNumber,
		UnitType:      models.UnitType(req.UnitType),
		Floor:         req.Floor,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		RentAmount:    req.RentAmount,
		DepositAmount: req.DepositAmount,
		Status:        status,
		Description:   req.Description,
	}
	if err := s.unitRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
			return nil, utils.ErrUnitNumberExists
		}
		return nil, fmt.Errorf("create unit: %w", err)
	}
	return u, nil
}

func (s *UnitService) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return s.unitRepo.GetByID(ctx, id)
}

func (s *UnitService) List(ctx context.Context, f repositories.UnitFilter) ([]*models.Unit, error) {
	return s.unitRepo.List(ctx, f)
}

func (s *UnitService) Update(ctx context.Context, id uuid.UUID, req *dtos.UpdateUnitRequest) (*models.Unit, error) {
	err := s.unitRepo.UpdateWithRetry(ctx, id, func(u *models.Unit) error {
		u.UnitNumber = req.UnitNumber
		u.UnitType = models.UnitType(req.UnitType)
		u.Floor = req.Floor
		u.Bedrooms = req.Bedrooms
		u.Bathrooms = req.Bathrooms
		u.RentAmount = req.RentAmount
		u.DepositAmount = req.DepositAmount
		u.Status = models.UnitStatusType(req.Status)
		u.Description = req.Description
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
			return nil, utils.ErrUnitNumberExists
		}
		return nil, err
	}
	return s.unitRepo.GetByID(ctx, id)
}

// Delete removes a unit, clearing the unit link of any tenants still
// attached to it, in one transaction.
func (s *UnitService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete unit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txUnits := repositories.NewUnitRepository(tx)
	txTenants := repositories.NewTenantRepository(tx)

	if err := txTenants.ClearUnitReferences(ctx, id); err != nil {
		return err
	}
	if err := txUnits.Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *UnitService) Tenants(ctx context.Context, id uuid.UUID) ([]*models.Tenant, error) {
	return s.tenantRepo.ListByUnitID(ctx, id)
}

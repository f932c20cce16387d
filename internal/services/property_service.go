package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

type PropertyService struct {
	db           repositories.DB
	propertyRepo repositories.PropertyRepository
	unitRepo     repositories.UnitRepository
	tenantRepo   repositories.TenantRepository
}

func NewPropertyService(db repositories.DB, propertyRepo repositories.PropertyRepository, unitRepo repositories.UnitRepository, tenantRepo repositories.TenantRepository) *PropertyService {
	return &PropertyService{
		db:           db,
		propertyRepo: propertyRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
	}
}

func (s *PropertyService) Create(ctx context.Context, req *dtos.CreatePropertyRequest) (*models.Property, error) {
	status := models.PropertyStatusType(req.Status)
	if status == "" {
		status = models.PropertyStatusActive
	}

	p := &models.Property{
		ID:           uuid.New(),
		Name:         req.Name,
		PropertyType: models.PropertyType(req.PropertyType),
		Address:      req.Address,
		City:         req.City,
		County:       req.County,
		Description:  req.Description,
		TotalUnits:   req.TotalUnits,
		Status:       status,
		ManagerID:    req.ManagerID,
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	utils.Logger.Infof("Created property %s (%s)", p.ID, p.Name)
	return p, nil
}

func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}

func (s *PropertyService) List(ctx context.Context, f repositories.PropertyFilter) ([]*models.Property, error) {
	return s.propertyRepo.List(ctx, f)
}

func (s *PropertyService) Update(ctx context.Context, id uuid.UUID, req *dtos.UpdatePropertyRequest) (*models.Property, error) {
	err := s.propertyRepo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
		p.Name = req.Name
		p.PropertyType = models.PropertyType(req.PropertyType)
		p.Address = req.Address
		p.City = req.City
		p.County = req.County
		p.Description = req.Description
		p.TotalUnits = req.TotalUnits
		p.Status = models.PropertyStatusType(req.Status)
		p.ManagerID = req.ManagerID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.propertyRepo.GetByID(ctx, id)
}

// Delete removes a property and all of its units in one transaction.
// Tenants referencing those units keep their rows but lose the unit
// link.
func (s *PropertyService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete property tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txUnits := repositories.NewUnitRepository(tx)
	txTenants := repositories.NewTenantRepository(tx)
	txProps := repositories.NewPropertyRepository(tx)

	units, err := txUnits.ListByPropertyID(ctx, id)
	if err != nil {
		return err
	}
	for _, u := range units {
		if err := txTenants.ClearUnitReferences(ctx, u.ID); err != nil {
			return err
		}
	}
	if err := txUnits.DeleteByPropertyID(ctx, id); err != nil {
		return err
	}
	if err := txProps.Delete(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	utils.Logger.Infof("Deleted property %s and %d units", id, len(units))
	return nil
}

// Stats derives the per-property occupancy summary from the actual
// units on record, not the declared total_units.
func (s *PropertyService) Stats(ctx context.Context, id uuid.UUID) (*dtos.PropertyStatsResponse, error) {
	occupied, total, err := s.unitRepo.CountOccupiedByProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dtos.PropertyStatsResponse{
		TotalUnits:    total,
		OccupiedUnits: occupied,
		OccupancyRate: models.OccupancyRate(occupied, total),
	}, nil
}

func (s *PropertyService) Units(ctx context.Context, id uuid.UUID) ([]*models.Unit, error) {
	return s.unitRepo.ListByPropertyID(ctx, id)
}

package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

// SeedTestData loads a small demo portfolio: one staff login, one
// property with three units, two tenants (one occupying a unit) and a
// couple of payments. It is idempotent via the seed user's username.
func SeedTestData(
	ctx context.Context,
	userRepo repositories.UserRepository,
	propertyRepo repositories.PropertyRepository,
	unitRepo repositories.UnitRepository,
	tenantRepo repositories.TenantRepository,
	paymentRepo repositories.PaymentRepository,
) error {
	existing, err := userRepo.GetByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		utils.Logger.Info("Seed data already present, skipping")
		return nil
	}

	hash, err := utils.HashPassword("admin12345")
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:           uuid.New(),
		Username:     "admin",
		Email:        "admin@nyumbani.co.ke",
		FirstName:    "Amina",
		LastName:     "Odhiambo",
		PasswordHash: hash,
		IsStaff:      true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}

	prop := &models.Property{
		ID:           uuid.New(),
		Name:         "Riverside Gardens",
		PropertyType: models.PropertyTypeApartment,
		Address:      "Riverside Drive 44",
		City:         "Nairobi",
		County:       "Nairobi",
		Description:  "Demo property",
		TotalUnits:   3,
		Status:       models.PropertyStatusActive,
		ManagerID:    utils.Ptr(admin.ID),
	}
	if err := propertyRepo.Create(ctx, prop); err != nil {
		return err
	}

	units := []*models.Unit{
		{
			ID: uuid.New(), PropertyID: prop.ID, UnitNumber: "A1",
			UnitType: models.UnitTypeOneBed, Floor: "1", Bedrooms: 1, Bathrooms: 1,
			RentAmount: decimal.NewFromInt(25000), Status: models.UnitStatusOccupied,
		},
		{
			ID: uuid.New(), PropertyID: prop.ID, UnitNumber: "A2",
			UnitType: models.UnitTypeTwoBed, Floor: "1", Bedrooms: 2, Bathrooms: 1,
			RentAmount: decimal.NewFromInt(38000), Status: models.UnitStatusAvailable,
		},
		{
			ID: uuid.New(), PropertyID: prop.ID, UnitNumber: "B1",
			UnitType: models.UnitTypeStudio, Floor: "2", Bedrooms: 0, Bathrooms: 1,
			RentAmount: decimal.NewFromInt(18000), Status: models.UnitStatusMaintenance,
		},
	}
	for _, u := range units {
		if err := unitRepo.Create(ctx, u); err != nil {
			return err
		}
	}

	leaseStart := time.Now().AddDate(0, -6, 0)
	leaseEnd := leaseStart.AddDate(1, 0, 0)
	tenants := []*models.Tenant{
		{
			ID: uuid.New(), FirstName: "Brian", LastName: "Mwangi",
			Email: "brian.mwangi@example.com", Phone: "254712345678", IDNumber: "12345678",
			UnitID: utils.Ptr(units[0].ID), LeaseStartDate: &leaseStart, LeaseEndDate: &leaseEnd,
			RentAmount: utils.Ptr(decimal.NewFromInt(25000)),
			Status:     models.TenantStatusActive,
		},
		{
			ID: uuid.New(), FirstName: "Cynthia", LastName: "Wanjiru",
			Email: "cynthia.wanjiru@example.com", Phone: "254722000111", IDNumber: "87654321",
			Status: models.TenantStatusPending,
		},
	}
	for _, t := range tenants {
		if err := tenantRepo.Create(ctx, t); err != nil {
			return err
		}
	}

	payments := []*models.Payment{
		{
			ID: uuid.New(), TenantID: tenants[0].ID,
			Amount: decimal.NewFromInt(25000), PaymentType: models.PaymentTypeRent,
			PaymentMethod: models.PaymentMethodMpesa, PaymentDate: time.Now().AddDate(0, -1, 0),
			ReferenceNumber: "SEED0000001", Status: models.PaymentStatusCompleted,
		},
		{
			ID: uuid.New(), TenantID: tenants[0].ID,
			Amount: decimal.NewFromInt(25000), PaymentType: models.PaymentTypeRent,
			PaymentMethod: models.PaymentMethodCash, PaymentDate: time.Now(),
			ReferenceNumber: "SEED0000002", Status: models.PaymentStatusPending,
		},
	}
	for _, p := range payments {
		if err := paymentRepo.Create(ctx, p); err != nil {
			return err
		}
	}

	utils.Logger.Info("Seeded demo portfolio")
	return nil
}

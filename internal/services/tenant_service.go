package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	twilio "github.com/twilio/twilio-go"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

// TenantService owns the tenancy rule: a unit is occupied exactly when
// an active tenant is assigned to it. Every write that can change an
// assignment adjusts the affected units in the same transaction.
type TenantService struct {
	cfg          *config.Config
	db           repositories.DB
	tenantRepo   repositories.TenantRepository
	unitRepo     repositories.UnitRepository
	paymentRepo  repositories.PaymentRepository
	twilioClient *twilio.RestClient
}

func NewTenantService(cfg *config.Config, db repositories.DB, tenantRepo repositories.TenantRepository, unitRepo repositories.UnitRepository, paymentRepo repositories.PaymentRepository) *TenantService {
	s := &TenantService{
		cfg:         cfg,
		db:          db,
		tenantRepo:  tenantRepo,
		unitRepo:    unitRepo,
		paymentRepo: paymentRepo,
	}
	if cfg.TwilioAccountSID != "" {
		s.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return s
}

// validatePhone applies the local MSISDN sanity check and, when the
// flag is on, a Twilio Lookups fetch.
func (s *TenantService) validatePhone(ctx context.Context, number string) error {
	ok, err := utils.ValidatePhoneNumber(ctx, number, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
	if err != nil {
		return fmt.Errorf("validate phone: %w", err)
	}
	if !ok {
		return utils.ErrInvalidPhone
	}
	return nil
}

func (s *TenantService) Create(ctx context.Context, req *dtos.CreateTenantRequest) (*models.Tenant, error) {
	if err := s.validatePhone(ctx, req.Phone); err != nil {
		return nil, err
	}
	phone := utils.NormalizePhone(req.Phone)

	status := models.TenantStatusType(req.Status)
	if status == "" {
		status = models.TenantStatusActive
	}

	t := &models.Tenant{
		ID:                    uuid.New(),
		UserID:                req.UserID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 phone,
		IDNumber:              req.IDNumber,
		UnitID:                req.UnitID,
		LeaseStartDate:        req.LeaseStartDate,
		LeaseEndDate:          req.LeaseEndDate,
		RentAmount:            req.RentAmount,
		DepositPaid:           req.DepositPaid,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: normalizeOptionalPhone(req.EmergencyContactPhone),
		Status:                status,
		Notes:                 req.Notes,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create tenant tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txTenants := repositories.NewTenantRepository(tx)
	txUnits := repositories.NewUnitRepository(tx)

	if err := txTenants.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, utils.ErrEmailExists
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	if t.UnitID != nil && t.Status == models.TenantStatusActive {
		if err := txUnits.SetStatus(ctx, *t.UnitID, models.UnitStatusOccupied); err != nil {
			return nil, fmt.Errorf("occupy unit %s: %w", *t.UnitID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	utils.Logger.Infof("Created tenant %s (%s)", t.ID, t.FullName())
	return t, nil
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context, f repositories.TenantFilter) ([]*models.Tenant, error) {
	return s.tenantRepo.List(ctx, f)
}

// Update applies the edit and reconciles unit occupancy: a vacated or
// swapped-out unit goes back to available, and the new unit (if any)
// becomes occupied when the tenant is active.
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req *dtos.UpdateTenantRequest) (*models.Tenant, error) {
	if err := s.validatePhone(ctx, req.Phone); err != nil {
		return nil, err
	}
	phone := utils.NormalizePhone(req.Phone)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update tenant tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txTenants := repositories.NewTenantRepository(tx)
	txUnits := repositories.NewUnitRepository(tx)

	var oldUnitID *uuid.UUID
	err = txTenants.UpdateWithRetry(ctx, id, func(t *models.Tenant) error {
		oldUnitID = t.UnitID

		t.UserID = req.UserID
		t.FirstName = req.FirstName
		t.LastName = req.LastName
		t.Email = req.Email
		t.Phone = phone
		t.IDNumber = req.IDNumber
		t.UnitID = req.UnitID
		t.LeaseStartDate = req.LeaseStartDate
		t.LeaseEndDate = req.LeaseEndDate
		t.RentAmount = req.RentAmount
		t.DepositPaid = req.DepositPaid
		t.EmergencyContactName = req.EmergencyContactName
		t.EmergencyContactPhone = normalizeOptionalPhone(req.EmergencyContactPhone)
		t.Status = models.TenantStatusType(req.Status)
		t.Notes = req.Notes
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, utils.ErrEmailExists
		}
		return nil, err
	}

	newStatus := models.TenantStatusType(req.Status)
	if err := s.reconcileUnits(ctx, txUnits, oldUnitID, req.UnitID, newStatus); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.tenantRepo.GetByID(ctx, id)
}

// reconcileUnits releases the old unit and occupies the new one as
// dictated by the tenant's status after the write.
func (s *TenantService) reconcileUnits(ctx context.Context, units repositories.UnitRepository, oldUnitID, newUnitID *uuid.UUID, status models.TenantStatusType) error {
	sameUnit := oldUnitID != nil && newUnitID != nil && *oldUnitID == *newUnitID

	if oldUnitID != nil && !sameUnit {
		if err := units.SetStatus(ctx, *oldUnitID, models.UnitStatusAvailable); err != nil {
			return fmt.Errorf("release unit %s: %w", *oldUnitID, err)
		}
	}
	if newUnitID != nil {
		want := models.UnitStatusAvailable
		if status == models.TenantStatusActive {
			want = models.UnitStatusOccupied
		}
		if err := units.SetStatus(ctx, *newUnitID, want); err != nil {
			return fmt.Errorf("set unit %s to %s: %w", *newUnitID, want, err)
		}
	}
	return nil
}

// Delete removes the tenant, their payments and releases their unit in
// one transaction.
func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete tenant tx: %w", err)
	}
	defer tx.Rollback(ctx)

	txTenants := repositories.NewTenantRepository(tx)
	txUnits := repositories.NewUnitRepository(tx)
	txPayments := repositories.NewPaymentRepository(tx)

	t, err := txTenants.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return nil
	}

	if err := txPayments.DeleteByTenantID(ctx, id); err != nil {
		return err
	}
	if err := txTenants.Delete(ctx, id); err != nil {
		return err
	}
	if t.UnitID != nil {
		if err := txUnits.SetStatus(ctx, *t.UnitID, models.UnitStatusAvailable); err != nil {
			return fmt.Errorf("release unit %s: %w", *t.UnitID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	utils.Logger.Infof("Deleted tenant %s and released unit", id)
	return nil
}

func (s *TenantService) Payments(ctx context.Context, id uuid.UUID, limit int) ([]*models.Payment, error) {
	return s.paymentRepo.ListByTenantID(ctx, id, limit)
}

// normalizeOptionalPhone cleans up secondary phone fields without
// rejecting the record when they are empty or malformed.
func normalizeOptionalPhone(raw string) string {
	if raw == "" {
		return ""
	}
	if utils.IsPlausiblePhone(raw) {
		return utils.NormalizePhone(raw)
	}
	return raw
}

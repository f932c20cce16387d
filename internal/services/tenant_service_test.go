package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

type fakeUnitRepo struct {
	repositories.UnitRepository
	statuses map[uuid.UUID]models.UnitStatusType
}

func newFakeUnitRepo() *fakeUnitRepo {
	return &fakeUnitRepo{statuses: map[uuid.UUID]models.UnitStatusType{}}
}

func (f *fakeUnitRepo) SetStatus(_ context.Context, id uuid.UUID, status models.UnitStatusType) error {
	f.statuses[id] = status
	return nil
}

func TestReconcileUnitsReassignment(t *testing.T) {
	svc := &TenantService{}
	units := newFakeUnitRepo()
	oldUnit, newUnit := uuid.New(), uuid.New()

	err := svc.reconcileUnits(context.Background(), units, &oldUnit, &newUnit, models.TenantStatusActive)
	require.NoError(t, err)

	assert.Equal(t, models.UnitStatusAvailable, units.statuses[oldUnit], "vacated unit must be released")
	assert.Equal(t, models.UnitStatusOccupied, units.statuses[newUnit])
}

func TestReconcileUnitsSameUnitKeptOccupied(t *testing.T) {
	svc := &TenantService{}
	units := newFakeUnitRepo()
	unit := uuid.New()

	err := svc.reconcileUnits(context.Background(), units, &unit, &unit, models.TenantStatusActive)
	require.NoError(t, err)

	// The unit the tenant stays in must not bounce through available.
	assert.Equal(t, models.UnitStatusOccupied, units.statuses[unit])
	assert.Len(t, units.statuses, 1)
}

func TestReconcileUnitsInactiveTenantReleasesUnit(t *testing.T) {
	svc := &TenantService{}
	units := newFakeUnitRepo()
	unit := uuid.New()

	err := svc.reconcileUnits(context.Background(), units, &unit, &unit, models.TenantStatusInactive)
	require.NoError(t, err)

	assert.Equal(t, models.UnitStatusAvailable, units.statuses[unit])
}

func TestReconcileUnitsVacate(t *testing.T) {
	svc := &TenantService{}
	units := newFakeUnitRepo()
	oldUnit := uuid.New()

	err := svc.reconcileUnits(context.Background(), units, &oldUnit, nil, models.TenantStatusActive)
	require.NoError(t, err)

	assert.Equal(t, models.UnitStatusAvailable, units.statuses[oldUnit])
	assert.Len(t, units.statuses, 1)
}

func TestReconcileUnitsNoUnits(t *testing.T) {
	svc := &TenantService{}
	units := newFakeUnitRepo()

	err := svc.reconcileUnits(context.Background(), units, nil, nil, models.TenantStatusActive)
	require.NoError(t, err)
	assert.Empty(t, units.statuses)
}

func TestNormalizeOptionalPhone(t *testing.T) {
	assert.Equal(t, "", normalizeOptionalPhone(""))
	assert.Equal(t, "254712345678", normalizeOptionalPhone("0712345678"))
	// Non-Kenyan contact numbers pass through untouched.
	assert.Equal(t, "+1 555 0100", normalizeOptionalPhone("+1 555 0100"))
}

func TestTenantCreateRejectsBadPhone(t *testing.T) {
	svc := NewTenantService(&config.Config{}, nil, nil, nil, nil)
	_, err := svc.Create(context.Background(), &dtos.CreateTenantRequest{
		FirstName: "Ann",
		LastName:  "Otieno",
		Phone:     "12345",
	})
	assert.ErrorIs(t, err, utils.ErrInvalidPhone)
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
)

const (
	recentPaymentsLimit   = 10
	topPropertiesLimit    = 10
	leaseExpiryWindowDays = 30
)

// ReportService aggregates the read-only figures behind the dashboards
// and reports. It never writes.
type ReportService struct {
	propertyRepo repositories.PropertyRepository
	unitRepo     repositories.UnitRepository
	tenantRepo   repositories.TenantRepository
	paymentRepo  repositories.PaymentRepository
}

func NewReportService(propertyRepo repositories.PropertyRepository, unitRepo repositories.UnitRepository, tenantRepo repositories.TenantRepository, paymentRepo repositories.PaymentRepository) *ReportService {
	return &ReportService{
		propertyRepo: propertyRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
		paymentRepo:  paymentRepo,
	}
}

// FinancialReport assembles the revenue figures for one calendar year.
func (s *ReportService) FinancialReport(ctx context.Context, year int) (*dtos.FinancialReportResponse, error) {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}

	totalRevenue, err := s.paymentRepo.SumByStatus(ctx, models.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	monthRevenue, err := s.paymentRepo.SumCompletedForMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	pending, err := s.paymentRepo.SumByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	expected, err := s.unitRepo.SumOccupiedRent(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.paymentRepo.MonthlyCompletedTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	byType, err := s.paymentRepo.SumCompletedByType(ctx)
	if err != nil {
		return nil, err
	}
	byProperty, err := s.paymentRepo.RevenueByProperty(ctx, topPropertiesLimit)
	if err != nil {
		return nil, err
	}

	return &dtos.FinancialReportResponse{
		Year:              year,
		TotalRevenue:      totalRevenue,
		MonthRevenue:      monthRevenue,
		PendingAmount:     pending,
		ExpectedMonthly:   expected,
		CollectionRate:    collectionRate(monthRevenue, expected),
		MonthlyTotals:     monthly,
		RevenueByType:     byType,
		RevenueByProperty: byProperty,
	}, nil
}

// OccupancyReport assembles the portfolio occupancy breakdown plus
// tenancies expiring inside the next thirty days.
func (s *ReportService) OccupancyReport(ctx context.Context) (*dtos.OccupancyReportResponse, error) {
	total, err := s.unitRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.unitRepo.CountByStatus(ctx, models.UnitStatusOccupied)
	if err != nil {
		return nil, err
	}
	available, err := s.unitRepo.CountByStatus(ctx, models.UnitStatusAvailable)
	if err != nil {
		return nil, err
	}
	byProperty, err := s.unitRepo.OccupancyByProperty(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.unitRepo.OccupancyByUnitType(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiring, err := s.tenantRepo.ExpiringLeases(ctx, now, now.AddDate(0, 0, leaseExpiryWindowDays))
	if err != nil {
		return nil, err
	}

	return &dtos.OccupancyReportResponse{
		TotalUnits:      total,
		OccupiedUnits:   occupied,
		AvailableUnits:  available,
		OccupancyRate:   models.OccupancyRate(occupied, total),
		ByProperty:      byProperty,
		ByUnitType:      byType,
		ExpiringTenants: expiring,
	}, nil
}

// Dashboard assembles the staff landing-page summary.
func (s *ReportService) Dashboard(ctx context.Context) (*dtos.DashboardResponse, error) {
	properties, err := s.propertyRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUnits, err := s.unitRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	occupied, err := s.unitRepo.CountByStatus(ctx, models.UnitStatusOccupied)
	if err != nil {
		return nil, err
	}
	available, err := s.unitRepo.CountByStatus(ctx, models.UnitStatusAvailable)
	if err != nil {
		return nil, err
	}
	activeTenants, err := s.tenantRepo.CountByStatus(ctx, models.TenantStatusActive)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	monthRevenue, err := s.paymentRepo.SumCompletedForMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	pendingCount, err := s.paymentRepo.CountByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	recent, err := s.paymentRepo.List(ctx, repositories.PaymentFilter{})
	if err != nil {
		return nil, err
	}
	if len(recent) > recentPaymentsLimit {
		recent = recent[:recentPaymentsLimit]
	}

	return &dtos.DashboardResponse{
		TotalProperties: properties,
		TotalUnits:      totalUnits,
		OccupiedUnits:   occupied,
		AvailableUnits:  available,
		OccupancyRate:   models.OccupancyRate(occupied, totalUnits),
		ActiveTenants:   activeTenants,
		MonthRevenue:    monthRevenue,
		PendingPayments: pendingCount,
		RecentPayments:  recent,
	}, nil
}

// TenantDashboard assembles what the logged-in tenant sees about their
// own tenancy. Returns nil when the user has no tenant record.
func (s *ReportService) TenantDashboard(ctx context.Context, userID uuid.UUID) (*dtos.TenantDashboardResponse, error) {
	tenant, err := s.tenantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, nil
	}

	resp := &dtos.TenantDashboardResponse{Tenant: tenant}

	if tenant.UnitID != nil {
		unit, err := s.unitRepo.GetByID(ctx, *tenant.UnitID)
		if err != nil {
			return nil, err
		}
		resp.Unit = unit
		if unit != nil {
			prop, err := s.propertyRepo.GetByID(ctx, unit.PropertyID)
			if err != nil {
				return nil, err
			}
			resp.Property = prop
		}
	}

	resp.RecentPayments, err = s.paymentRepo.ListByTenantID(ctx, tenant.ID, recentPaymentsLimit)
	if err != nil {
		return nil, err
	}
	resp.TotalPaid, err = s.paymentRepo.SumByTenantAndStatus(ctx, tenant.ID, models.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rentPayment, err := s.paymentRepo.FindRentPaymentForMonth(ctx, tenant.ID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	resp.RentPaidForMonth = rentPayment != nil && rentPayment.Status == models.PaymentStatusCompleted
	return resp, nil
}

// collectionRate is collected over expected for the current month, as
// a percentage rounded to one decimal place. Zero expected rent means
// a zero rate.
func collectionRate(collected, expected decimal.Decimal) float64 {
	if expected.IsZero() {
		return 0
	}
	rate, _ := collected.Div(expected).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return rate
}

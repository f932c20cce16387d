package dtos

import (
	"github.com/shopspring/decimal"

	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/repositories"
)

// FinancialReportResponse is the staff-facing revenue report.
type FinancialReportResponse struct {
	Year              int                          `json:"year"`
	TotalRevenue      decimal.Decimal              `json:"total_revenue"`
	MonthRevenue      decimal.Decimal              `json:"month_revenue"`
	PendingAmount     decimal.Decimal              `json:"pending_amount"`
	ExpectedMonthly   decimal.Decimal              `json:"expected_monthly"`
	CollectionRate    float64                      `json:"collection_rate"`
	MonthlyTotals     []repositories.MonthTotal    `json:"monthly_totals"`
	RevenueByType     []repositories.TypeTotal     `json:"revenue_by_type"`
	RevenueByProperty []repositories.PropertyTotal `json:"revenue_by_property"`
}

// OccupancyReportResponse is the staff-facing occupancy report.
type OccupancyReportResponse struct {
	TotalUnits      int                              `json:"total_units"`
	OccupiedUnits   int                              `json:"occupied_units"`
	AvailableUnits  int                              `json:"available_units"`
	OccupancyRate   float64                          `json:"occupancy_rate"`
	ByProperty      []repositories.PropertyOccupancy `json:"by_property"`
	ByUnitType      []repositories.UnitTypeOccupancy `json:"by_unit_type"`
	ExpiringTenants []*models.Tenant                 `json:"expiring_tenants"`
}

// DashboardResponse is the staff landing-page summary.
type DashboardResponse struct {
	TotalProperties int               `json:"total_properties"`
	TotalUnits      int               `json:"total_units"`
	OccupiedUnits   int               `json:"occupied_units"`
	AvailableUnits  int               `json:"available_units"`
	OccupancyRate   float64           `json:"occupancy_rate"`
	ActiveTenants   int               `json:"active_tenants"`
	MonthRevenue    decimal.Decimal   `json:"month_revenue"`
	PendingPayments int               `json:"pending_payments"`
	RecentPayments  []*models.Payment `json:"recent_payments"`
}

// TenantDashboardResponse is what a logged-in tenant sees.
type TenantDashboardResponse struct {
	Tenant          *models.Tenant    `json:"tenant"`
	Unit            *models.Unit      `json:"unit,omitempty"`
	Property        *models.Property  `json:"property,omitempty"`
	RecentPayments  []*models.Payment `json:"recent_payments"`
	TotalPaid       decimal.Decimal   `json:"total_paid"`
	RentPaidForMonth bool             `json:"rent_paid_for_month"`
}

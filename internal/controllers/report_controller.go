package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nyumbani/rental-service/internal/middleware"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

type ReportController struct {
	reportService *services.ReportService
}

func NewReportController(s *services.ReportService) *ReportController {
	return &ReportController{reportService: s}
}

// GET /api/v1/reports/financial/?year=2026
func (c *ReportController) FinancialReportHandler(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid year", nil, err)
			return
		}
		year = y
	}

	report, err := c.reportService.FinancialReport(r.Context(), year)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build financial report", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}

// GET /api/v1/reports/occupancy/
func (c *ReportController) OccupancyReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := c.reportService.OccupancyReport(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build occupancy report", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}

// GET /api/v1/dashboard/
func (c *ReportController) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	dash, err := c.reportService.Dashboard(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build dashboard", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dash)
}

// GET /api/v1/tenant-dashboard/ – what the logged-in tenant sees.
func (c *ReportController) TenantDashboardHandler(w http.ResponseWriter, r *http.Request) {
	rawID := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(rawID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil, err)
		return
	}

	dash, err := c.reportService.TenantDashboard(r.Context(), userID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not build tenant dashboard", nil, err)
		return
	}
	if dash == nil {
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound, "No tenant record for this user", nil)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dash)
}

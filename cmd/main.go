package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/nyumbani/rental-service/internal/app"
	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/controllers"
	"github.com/nyumbani/rental-service/internal/middleware"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/mpesa"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/routes"
	"github.com/nyumbani/rental-service/internal/services"
	"github.com/nyumbani/rental-service/internal/utils"
)

const darajaTimeout = 30 * time.Second

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize rental-service:", err)
	}
	defer application.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(application.DB)
	propertyRepo := repositories.NewPropertyRepository(application.DB)
	unitRepo := repositories.NewUnitRepository(application.DB)
	tenantRepo := repositories.NewTenantRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedTestData(context.Background(), userRepo, propertyRepo, unitRepo, tenantRepo, paymentRepo); err != nil {
			utils.Logger.Fatal("Failed to seed test data:", err)
		}
	}

	// Payment provider client
	daraja, err := mpesa.NewClient(
		cfg.MpesaConsumerKey, cfg.MpesaConsumerSecret,
		cfg.MpesaShortCode, cfg.MpesaPasskey,
		cfg.MpesaCallbackURL, cfg.MpesaSandboxMode, darajaTimeout,
	)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize Daraja client:", err)
	}

	// Services
	authService := services.NewAuthService(cfg, userRepo)
	propertyService := services.NewPropertyService(application.DB, propertyRepo, unitRepo, tenantRepo)
	unitService := services.NewUnitService(application.DB, unitRepo, tenantRepo)
	tenantService := services.NewTenantService(cfg, application.DB, tenantRepo, unitRepo, paymentRepo)
	paymentService := services.NewPaymentService(cfg, application.DB, paymentRepo, tenantRepo, daraja)
	reportService := services.NewReportService(propertyRepo, unitRepo, tenantRepo, paymentRepo)

	leaseService := services.NewLeaseService(tenantRepo, paymentService)
	if err := leaseService.Start(); err != nil {
		utils.Logger.Fatal("Failed to schedule background jobs:", err)
	}
	defer leaseService.Stop()

	// Controllers
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService)
	propertyController := controllers.NewPropertyController(propertyService)
	unitController := controllers.NewUnitController(unitService)
	tenantController := controllers.NewTenantController(tenantService)
	paymentController := controllers.NewPaymentController(paymentService)
	webhookController := controllers.NewMpesaWebhookController(paymentService)
	reportController := controllers.NewReportController(reportService)

	// Router setup
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AuthLogin, authController.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.MpesaCallback, webhookController.CallbackHandler).Methods(http.MethodPost)

	// Staff routes
	staff := router.NewRoute().Subrouter()
	staff.Use(middleware.RequireRole(cfg.RSAPublicKey, models.RoleStaff))

	staff.HandleFunc(routes.AuthRegister, authController.RegisterHandler).Methods(http.MethodPost)

	staff.HandleFunc(routes.Properties, propertyController.CreateHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.Properties, propertyController.ListHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyByID, propertyController.GetHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyByID, propertyController.UpdateHandler).Methods(http.MethodPut)
	staff.HandleFunc(routes.PropertyByID, propertyController.DeleteHandler).Methods(http.MethodDelete)
	staff.HandleFunc(routes.PropertyStats, propertyController.StatsHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.PropertyUnits, propertyController.UnitsHandler).Methods(http.MethodGet)

	staff.HandleFunc(routes.Units, unitController.CreateHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.Units, unitController.ListHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.UnitByID, unitController.GetHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.UnitByID, unitController.UpdateHandler).Methods(http.MethodPut)
	staff.HandleFunc(routes.UnitByID, unitController.DeleteHandler).Methods(http.MethodDelete)
	staff.HandleFunc(routes.UnitTenants, unitController.TenantsHandler).Methods(http.MethodGet)

	staff.HandleFunc(routes.Tenants, tenantController.CreateHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.Tenants, tenantController.ListHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.TenantByID, tenantController.GetHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.TenantByID, tenantController.UpdateHandler).Methods(http.MethodPut)
	staff.HandleFunc(routes.TenantByID, tenantController.DeleteHandler).Methods(http.MethodDelete)
	staff.HandleFunc(routes.TenantPayments, tenantController.PaymentsHandler).Methods(http.MethodGet)

	staff.HandleFunc(routes.Payments, paymentController.CreateHandler).Methods(http.MethodPost)
	staff.HandleFunc(routes.Payments, paymentController.ListHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.PaymentByID, paymentController.GetHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.PaymentByID, paymentController.UpdateHandler).Methods(http.MethodPut)
	staff.HandleFunc(routes.PaymentByID, paymentController.DeleteHandler).Methods(http.MethodDelete)
	staff.HandleFunc(routes.MpesaInitiate, paymentController.InitiateSTKPushHandler).Methods(http.MethodPost)

	staff.HandleFunc(routes.ReportFinancial, reportController.FinancialReportHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.ReportOccupancy, reportController.OccupancyReportHandler).Methods(http.MethodGet)
	staff.HandleFunc(routes.Dashboard, reportController.DashboardHandler).Methods(http.MethodGet)

	// Tenant routes
	tenant := router.NewRoute().Subrouter()
	tenant.Use(middleware.RequireRole(cfg.RSAPublicKey, models.RoleTenant))
	tenant.HandleFunc(routes.TenantDashboard, reportController.TenantDashboardHandler).Methods(http.MethodGet)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000")
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("rental-service failed to start:", err)
	}
}

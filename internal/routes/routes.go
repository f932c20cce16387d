package routes

const (
	Health = "/health"

	AuthLogin    = "/api/v1/auth/login/"
	AuthRegister = "/api/v1/auth/register/"

	Properties    = "/api/v1/properties/"
	PropertyByID  = "/api/v1/properties/{id}/"
	PropertyStats = "/api/v1/properties/{id}/stats/"
	PropertyUnits = "/api/v1/properties/{id}/units/"

	Units       = "/api/v1/units/"
	UnitByID    = "/api/v1/units/{id}/"
	UnitTenants = "/api/v1/units/{id}/tenants/"

	Tenants        = "/api/v1/tenants/"
	TenantByID     = "/api/v1/tenants/{id}/"
	TenantPayments = "/api/v1/tenants/{id}/payments/"

	Payments      = "/api/v1/payments/"
	PaymentByID   = "/api/v1/payments/{id}/"
	MpesaInitiate = "/api/v1/payments/mpesa/initiate/"
	MpesaCallback = "/api/v1/payments/mpesa/callback/"

	ReportFinancial = "/api/v1/reports/financial/"
	ReportOccupancy = "/api/v1/reports/occupancy/"
	Dashboard       = "/api/v1/dashboard/"
	TenantDashboard = "/api/v1/tenant-dashboard/"
)

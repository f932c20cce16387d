package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/mpesa"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

/* ---------- fakes ---------- */

// Fakes embed the interface so only the methods the flow under test
// touches need implementations; anything else panics loudly.

type fakeTenantRepo struct {
	repositories.TenantRepository
	tenants map[uuid.UUID]*models.Tenant
}

func newFakeTenantRepo(ts ...*models.Tenant) *fakeTenantRepo {
	f := &fakeTenantRepo{tenants: map[uuid.UUID]*models.Tenant{}}
	for _, t := range ts {
		f.tenants[t.ID] = t
	}
	return f
}

func (f *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	return f.tenants[id], nil
}

func (f *fakeTenantRepo) FindByPhoneSuffix(_ context.Context, suffix string) (*models.Tenant, error) {
	for _, t := range f.tenants {
		if utils.PhoneSuffix(t.Phone) == suffix {
			return t, nil
		}
	}
	return nil, nil
}

type fakePaymentRepo struct {
	repositories.PaymentRepository
	byID       map[uuid.UUID]*models.Payment
	byCheckout map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		byID:       map[uuid.UUID]*models.Payment{},
		byCheckout: map[string]*models.Payment{},
	}
}

func (f *fakePaymentRepo) Create(_ context.Context, p *models.Payment) error {
	if p.CheckoutRequestID != nil {
		if _, dup := f.byCheckout[*p.CheckoutRequestID]; dup {
			return repositories.ErrDuplicateCheckoutRequest
		}
		f.byCheckout[*p.CheckoutRequestID] = p
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	return f.byID[id], nil
}

func (f *fakePaymentRepo) GetByCheckoutRequestID(_ context.Context, checkoutRequestID string) (*models.Payment, error) {
	return f.byCheckout[checkoutRequestID], nil
}

func (f *fakePaymentRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Payment) error) error {
	p, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	return mutate(p)
}

type fakeDaraja struct {
	calls []decimal.Decimal
	resp  *mpesa.STKPushResponse
	err   error
}

func (f *fakeDaraja) STKPush(_ context.Context, phone string, amount decimal.Decimal, ref, desc string) (*mpesa.STKPushResponse, error) {
	f.calls = append(f.calls, amount)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestPaymentService(tenants *fakeTenantRepo, payments *fakePaymentRepo, daraja *fakeDaraja) *PaymentService {
	return NewPaymentService(&config.Config{}, nil, payments, tenants, daraja)
}

func activeTenant(phone string) *models.Tenant {
	return &models.Tenant{
		ID:        uuid.New(),
		FirstName: "Brian",
		LastName:  "Mwangi",
		Phone:     phone,
		Status:    models.TenantStatusActive,
	}
}

/* ---------- initiation ---------- */

func TestInitiateSTKPushRejectsLowAmountBeforeDispatch(t *testing.T) {
	tenant := activeTenant("254712345678")
	daraja := &fakeDaraja{}
	svc := newTestPaymentService(newFakeTenantRepo(tenant), newFakePaymentRepo(), daraja)

	_, err := svc.InitiateSTKPush(context.Background(), &dtos.STKPushRequest{
		TenantID:    tenant.ID,
		PhoneNumber: "254712345678",
		Amount:      decimal.NewFromFloat(0.5),
	})
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)
	assert.Empty(t, daraja.calls, "provider must not be called for invalid amounts")
}

func TestInitiateSTKPushRejectsBadPhoneBeforeDispatch(t *testing.T) {
	tenant := activeTenant("254712345678")
	daraja := &fakeDaraja{}
	svc := newTestPaymentService(newFakeTenantRepo(tenant), newFakePaymentRepo(), daraja)

	_, err := svc.InitiateSTKPush(context.Background(), &dtos.STKPushRequest{
		TenantID:    tenant.ID,
		PhoneNumber: "12345",
		Amount:      decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, utils.ErrInvalidPhone)
	assert.Empty(t, daraja.calls)
}

func TestInitiateSTKPushRecordsPendingPayment(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	daraja := &fakeDaraja{resp: &mpesa.STKPushResponse{
		CheckoutRequestID: "ws_CO_42",
		ResponseCode:      "0",
		CustomerMessage:   "Success",
	}}
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, daraja)

	resp, err := svc.InitiateSTKPush(context.Background(), &dtos.STKPushRequest{
		TenantID:    tenant.ID,
		PhoneNumber: "0712345678",
		Amount:      decimal.NewFromInt(25000),
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_42", resp.CheckoutRequestID)

	p := payments.byCheckout["ws_CO_42"]
	require.NotNil(t, p)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, models.PaymentMethodMpesa, p.PaymentMethod)
	assert.Equal(t, tenant.ID, p.TenantID)
}

func TestInitiateSTKPushProviderFailure(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	daraja := &fakeDaraja{err: &mpesa.APIError{Code: "500.001", Message: "downstream down"}}
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, daraja)

	_, err := svc.InitiateSTKPush(context.Background(), &dtos.STKPushRequest{
		TenantID:    tenant.ID,
		PhoneNumber: "254712345678",
		Amount:      decimal.NewFromInt(100),
	})
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.ErrCodeProviderError, appErr.Code)
	assert.Empty(t, payments.byID, "no payment may be recorded when the provider rejects")
}

/* ---------- callback matching ---------- */

func successCallback(checkoutID, phone string, amount int64) *mpesa.STKCallback {
	return &mpesa.STKCallback{
		CheckoutRequestID: checkoutID,
		ResultCode:        0,
		ResultDesc:        "The service request is processed successfully.",
		CallbackMetadata: mpesa.CallbackMetadata{Item: []mpesa.MetadataItem{
			{Name: "Amount", Value: jsonNumber(amount)},
			{Name: "MpesaReceiptNumber", Value: []byte(`"NLJ7RT61SV"`)},
			{Name: "PhoneNumber", Value: []byte(`"` + phone + `"`)},
		}},
	}
}

func jsonNumber(n int64) []byte {
	return []byte(decimal.NewFromInt(n).String())
}

func TestCallbackSettlesPendingPayment(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	pending := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Amount:            decimal.NewFromInt(25000),
		PaymentMethod:     models.PaymentMethodMpesa,
		PaymentType:       models.PaymentTypeRent,
		Status:            models.PaymentStatusPending,
		CheckoutRequestID: utils.Ptr("ws_CO_1"),
	}
	require.NoError(t, payments.Create(context.Background(), pending))

	svc.HandleStkCallback(context.Background(), successCallback("ws_CO_1", "254712345678", 25000))

	assert.Equal(t, models.PaymentStatusCompleted, pending.Status)
	assert.Equal(t, "NLJ7RT61SV", pending.ReferenceNumber)
	assert.Len(t, payments.byID, 1, "settling must not create a second payment")
}

func TestCallbackCreatesPaymentBySuffixMatch(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	svc.HandleStkCallback(context.Background(), successCallback("ws_CO_2", "254712345678", 18000))

	require.Len(t, payments.byID, 1)
	p := payments.byCheckout["ws_CO_2"]
	require.NotNil(t, p)
	assert.Equal(t, tenant.ID, p.TenantID)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(18000)))
	assert.Contains(t, p.Description, "ws_CO_2")
}

func TestCallbackWithoutAmountWritesNothing(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	pending := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Amount:            decimal.NewFromInt(25000),
		PaymentMethod:     models.PaymentMethodMpesa,
		Status:            models.PaymentStatusPending,
		CheckoutRequestID: utils.Ptr("ws_CO_7"),
	}
	require.NoError(t, payments.Create(context.Background(), pending))

	// Success result but no Amount item: nothing may be settled or
	// created off money we cannot quantify.
	svc.HandleStkCallback(context.Background(), &mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_7",
		ResultCode:        0,
		CallbackMetadata: mpesa.CallbackMetadata{Item: []mpesa.MetadataItem{
			{Name: "MpesaReceiptNumber", Value: []byte(`"NLJ7RT61SV"`)},
			{Name: "PhoneNumber", Value: []byte(`"254712345678"`)},
		}},
	})

	assert.Equal(t, models.PaymentStatusPending, pending.Status)
	assert.Len(t, payments.byID, 1)
}

func TestCallbackWithoutReceiptStillRecords(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	svc.HandleStkCallback(context.Background(), &mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_8",
		ResultCode:        0,
		CallbackMetadata: mpesa.CallbackMetadata{Item: []mpesa.MetadataItem{
			{Name: "Amount", Value: []byte(`18000`)},
			{Name: "PhoneNumber", Value: []byte(`"254712345678"`)},
		}},
	})

	p := payments.byCheckout["ws_CO_8"]
	require.NotNil(t, p)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Empty(t, p.ReferenceNumber)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(18000)))
}

func TestCallbackRedeliveryIsIdempotent(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	cb := successCallback("ws_CO_3", "254712345678", 18000)
	svc.HandleStkCallback(context.Background(), cb)
	svc.HandleStkCallback(context.Background(), cb)
	svc.HandleStkCallback(context.Background(), cb)

	assert.Len(t, payments.byID, 1, "redelivered callbacks must not duplicate the payment")
}

func TestCallbackFailureCreatesNothing(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	svc.HandleStkCallback(context.Background(), &mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_4",
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	})

	assert.Empty(t, payments.byID)
}

func TestCallbackFailureMarksPendingFailed(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	pending := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Amount:            decimal.NewFromInt(25000),
		PaymentMethod:     models.PaymentMethodMpesa,
		Status:            models.PaymentStatusPending,
		CheckoutRequestID: utils.Ptr("ws_CO_5"),
	}
	require.NoError(t, payments.Create(context.Background(), pending))

	svc.HandleStkCallback(context.Background(), &mpesa.STKCallback{
		CheckoutRequestID: "ws_CO_5",
		ResultCode:        1,
		ResultDesc:        "Insufficient balance",
	})

	assert.Equal(t, models.PaymentStatusFailed, pending.Status)
}

func TestCallbackUnknownPayerDropped(t *testing.T) {
	tenant := activeTenant("254712345678")
	payments := newFakePaymentRepo()
	svc := newTestPaymentService(newFakeTenantRepo(tenant), payments, &fakeDaraja{})

	svc.HandleStkCallback(context.Background(), successCallback("ws_CO_6", "254799999999", 5000))

	assert.Empty(t, payments.byID, "payments from unknown payers are not recorded")
}

/* ---------- manual CRUD guards ---------- */

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	tenant := activeTenant("254712345678")
	svc := newTestPaymentService(newFakeTenantRepo(tenant), newFakePaymentRepo(), &fakeDaraja{})

	_, err := svc.Create(context.Background(), &dtos.CreatePaymentRequest{
		TenantID:    tenant.ID,
		Amount:      decimal.Zero,
		PaymentType: "rent",
		PaymentDate: time.Now(),
	})
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)
}

func TestCreatePaymentUnknownTenant(t *testing.T) {
	svc := newTestPaymentService(newFakeTenantRepo(), newFakePaymentRepo(), &fakeDaraja{})

	_, err := svc.Create(context.Background(), &dtos.CreatePaymentRequest{
		TenantID:    uuid.New(),
		Amount:      decimal.NewFromInt(100),
		PaymentType: "rent",
		PaymentDate: time.Now(),
	})
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.ErrCodeNotFound, appErr.Code)
}

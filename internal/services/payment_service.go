package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	twilio "github.com/twilio/twilio-go"

	"github.com/nyumbani/rental-service/internal/config"
	"github.com/nyumbani/rental-service/internal/dtos"
	"github.com/nyumbani/rental-service/internal/models"
	"github.com/nyumbani/rental-service/internal/mpesa"
	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

// minimumPushAmount is the smallest amount the payment provider will
// collect, in whole shillings.
var minimumPushAmount = decimal.NewFromInt(1)

const receiptEmailHTML = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { padding: 20px; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 5px; }
.header { font-size: 22px; font-weight: bold; color: #2e7d32; }
.amount { font-size: 28px; font-weight: bold; margin: 15px 0; }
.meta { color: #666; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
<p class="header">Payment Received</p>
<p>Hi %s,</p>
<p>We have received your %s payment.</p>
<p class="amount">KES %s</p>
<p class="meta">Receipt: %s<br>Date: %s</p>
<p>Thank you.</p>
</div>
</body>
</html>`

// DarajaClient is the slice of the provider client the payment flow
// needs. *mpesa.Client satisfies it.
type DarajaClient interface {
	STKPush(ctx context.Context, phone string, amount decimal.Decimal, accountReference, description string) (*mpesa.STKPushResponse, error)
}

type PaymentService struct {
	cfg            *config.Config
	db             repositories.DB
	paymentRepo    repositories.PaymentRepository
	tenantRepo     repositories.TenantRepository
	daraja         DarajaClient
	sendgridClient *sendgrid.Client
	twilioClient   *twilio.RestClient
}

func NewPaymentService(cfg *config.Config, db repositories.DB, paymentRepo repositories.PaymentRepository, tenantRepo repositories.TenantRepository, daraja DarajaClient) *PaymentService {
	s := &PaymentService{
		cfg:         cfg,
		db:          db,
		paymentRepo: paymentRepo,
		tenantRepo:  tenantRepo,
		daraja:      daraja,
	}
	if cfg.SendgridAPIKey != "" {
		s.sendgridClient = sendgrid.NewSendClient(cfg.SendgridAPIKey)
	}
	if cfg.TwilioAccountSID != "" {
		s.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	return s
}

/* ---------- manual CRUD ---------- */

func (s *PaymentService) Create(ctx context.Context, req *dtos.CreatePaymentRequest) (*models.Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrInvalidAmount
	}
	tenant, err := s.tenantRepo.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, &utils.AppError{StatusCode: 404, Code: utils.ErrCodeNotFound, Message: "Tenant not found"}
	}

	status := models.PaymentStatusType(req.Status)
	if status == "" {
		status = models.PaymentStatusCompleted
	}

	p := &models.Payment{
		ID:              uuid.New(),
		TenantID:        req.TenantID,
		Amount:          req.Amount,
		PaymentType:     models.PaymentType(req.PaymentType),
		PaymentMethod:   models.PaymentMethodType(req.PaymentMethod),
		PaymentDate:     req.PaymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
		Status:          status,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) List(ctx context.Context, f repositories.PaymentFilter) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, f)
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req *dtos.UpdatePaymentRequest) (*models.Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrInvalidAmount
	}
	err := s.paymentRepo.UpdateWithRetry(ctx, id, func(p *models.Payment) error {
		p.Amount = req.Amount
		p.PaymentType = models.PaymentType(req.PaymentType)
		p.PaymentMethod = models.PaymentMethodType(req.PaymentMethod)
		p.PaymentDate = req.PaymentDate
		p.ReferenceNumber = req.ReferenceNumber
		p.Description = req.Description
		p.Status = models.PaymentStatusType(req.Status)
		p.PeriodStart = req.PeriodStart
		p.PeriodEnd = req.PeriodEnd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.paymentRepo.Delete(ctx, id)
}

/* ---------- STK push initiation ---------- */

// InitiateSTKPush validates everything locally before any provider
// traffic, then records a pending payment carrying the provider's
// checkout request ID so the eventual callback can find it.
func (s *PaymentService) InitiateSTKPush(ctx context.Context, req *dtos.STKPushRequest) (*dtos.STKPushResponse, error) {
	ok, err := utils.ValidatePhoneNumber(ctx, req.PhoneNumber, s.cfg.LDFlag_ValidatePhoneWithTwilio, s.twilioClient)
	if err != nil {
		return nil, fmt.Errorf("validate phone: %w", err)
	}
	if !ok {
		return nil, utils.ErrInvalidPhone
	}
	if req.Amount.LessThan(minimumPushAmount) {
		return nil, utils.ErrInvalidAmount
	}

	tenant, err := s.tenantRepo.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, &utils.AppError{StatusCode: 404, Code: utils.ErrCodeNotFound, Message: "Tenant not found"}
	}

	phone := utils.NormalizePhone(req.PhoneNumber)
	paymentType := models.PaymentType(req.PaymentType)
	if paymentType == "" {
		paymentType = models.PaymentTypeRent
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s payment for %s", paymentType, tenant.FullName())
	}

	resp, err := s.daraja.STKPush(ctx, phone, req.Amount, tenant.FullName(), string(paymentType))
	if err != nil {
		utils.Logger.WithError(err).Errorf("STK push failed for tenant %s", tenant.ID)
		return nil, &utils.AppError{
			StatusCode: 502,
			Code:       utils.ErrCodeProviderError,
			Message:    "Payment provider rejected the request",
			Err:        err,
		}
	}

	p := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Amount:            req.Amount,
		PaymentType:       paymentType,
		PaymentMethod:     models.PaymentMethodMpesa,
		PaymentDate:       time.Now().UTC(),
		Description:       description,
		Status:            models.PaymentStatusPending,
		CheckoutRequestID: utils.Ptr(resp.CheckoutRequestID),
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		// The push is already on the customer's phone; the callback
		// matcher will still record the money by phone suffix.
		utils.Logger.WithError(err).Errorf("Failed to record pending payment for checkout %s", resp.CheckoutRequestID)
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	utils.Logger.Infof("Initiated STK push %s for tenant %s (%s KES)", resp.CheckoutRequestID, tenant.ID, req.Amount)
	return &dtos.STKPushResponse{
		PaymentID:         p.ID,
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   resp.CustomerMessage,
	}, nil
}

/* ---------- callback matching ---------- */

// HandleStkCallback processes one asynchronous payment result. It is
// idempotent: redeliveries find the already-settled payment (or trip
// the unique checkout_request_id constraint) and change nothing.
// Errors are logged, not returned – the webhook endpoint always
// acknowledges so the provider stops retrying.
func (s *PaymentService) HandleStkCallback(ctx context.Context, cb *mpesa.STKCallback) {
	existing, err := s.paymentRepo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Callback lookup failed for checkout %s", cb.CheckoutRequestID)
		return
	}

	if !cb.Successful() {
		s.handleFailedCallback(ctx, cb, existing)
		return
	}

	details, err := cb.PaymentDetails()
	if err != nil {
		utils.Logger.WithError(err).Errorf("Discarding malformed callback metadata for checkout %s", cb.CheckoutRequestID)
		return
	}

	if existing != nil {
		s.settleExistingPayment(ctx, existing, details)
		return
	}

	s.recordUnsolicitedPayment(ctx, cb, details)
}

func (s *PaymentService) handleFailedCallback(ctx context.Context, cb *mpesa.STKCallback, existing *models.Payment) {
	utils.Logger.Infof("STK push %s failed: %d %s", cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc)
	if existing == nil {
		return
	}
	err := s.paymentRepo.UpdateWithRetry(ctx, existing.ID, func(p *models.Payment) error {
		if p.Status == models.PaymentStatusPending {
			p.Status = models.PaymentStatusFailed
			p.Description = cb.ResultDesc
		}
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to mark payment %s failed", existing.ID)
	}
}

func (s *PaymentService) settleExistingPayment(ctx context.Context, existing *models.Payment, details mpesa.PaymentDetails) {
	var settled bool
	err := s.paymentRepo.UpdateWithRetry(ctx, existing.ID, func(p *models.Payment) error {
		if p.Status != models.PaymentStatusPending {
			// Redelivery of a callback we already processed.
			return nil
		}
		p.Status = models.PaymentStatusCompleted
		p.ReferenceNumber = details.ReceiptNumber
		p.Amount = details.Amount
		settled = true
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to settle payment %s", existing.ID)
		return
	}
	if settled {
		utils.Logger.Infof("Settled payment %s with receipt %s", existing.ID, details.ReceiptNumber)
		s.sendReceiptEmail(ctx, existing.TenantID, details.Amount, string(existing.PaymentType), details.ReceiptNumber)
	}
}

// recordUnsolicitedPayment handles a success callback with no pending
// record: the payer is matched to a tenant by the trailing nine digits
// of their phone number and a completed payment is created.
func (s *PaymentService) recordUnsolicitedPayment(ctx context.Context, cb *mpesa.STKCallback, details mpesa.PaymentDetails) {
	suffix := utils.PhoneSuffix(details.PhoneNumber)
	tenant, err := s.tenantRepo.FindByPhoneSuffix(ctx, suffix)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Tenant lookup by phone suffix failed for checkout %s", cb.CheckoutRequestID)
		return
	}
	if tenant == nil {
		utils.Logger.Warnf("No tenant matches payer %s for checkout %s; dropping callback", details.PhoneNumber, cb.CheckoutRequestID)
		return
	}

	p := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Amount:            details.Amount,
		PaymentType:       models.PaymentTypeRent,
		PaymentMethod:     models.PaymentMethodMpesa,
		PaymentDate:       time.Now().UTC(),
		ReferenceNumber:   details.ReceiptNumber,
		Description:       fmt.Sprintf("M-Pesa payment - %s", cb.CheckoutRequestID),
		Status:            models.PaymentStatusCompleted,
		CheckoutRequestID: utils.Ptr(cb.CheckoutRequestID),
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateCheckoutRequest) {
			// A concurrent delivery of the same callback won the race.
			utils.Logger.Infof("Checkout %s already recorded, ignoring redelivery", cb.CheckoutRequestID)
			return
		}
		utils.Logger.WithError(err).Errorf("Failed to record callback payment for checkout %s", cb.CheckoutRequestID)
		return
	}

	utils.Logger.Infof("Recorded payment %s for tenant %s from callback %s", p.ID, tenant.ID, cb.CheckoutRequestID)
	s.sendReceiptEmail(ctx, tenant.ID, details.Amount, string(p.PaymentType), details.ReceiptNumber)
}

/* ---------- maintenance ---------- */

// FailStalePending flips mobile-money payments that never received a
// callback to failed. Invoked from the scheduler.
func (s *PaymentService) FailStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.paymentRepo.MarkStalePendingFailed(ctx, time.Now().UTC().Add(-maxAge))
}

/* ---------- receipts ---------- */

func (s *PaymentService) sendReceiptEmail(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, paymentType, receipt string) {
	if s.sendgridClient == nil {
		return
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil || tenant.Email == "" {
		return
	}

	from := mail.NewEmail(s.cfg.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(tenant.FullName(), tenant.Email)
	subject := "Payment received"
	if receipt != "" {
		subject += " - " + receipt
	}

	date := time.Now().Format("January 2, 2006")
	plain := fmt.Sprintf(
		"Hi %s,\n\nWe have received your %s payment of KES %s.\nReceipt: %s\nDate: %s\n\nThank you.",
		tenant.FirstName, paymentType, amount.StringFixed(2), receipt, date,
	)
	html := fmt.Sprintf(receiptEmailHTML, tenant.FirstName, paymentType, amount.StringFixed(2), receipt, date)

	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	if _, err := s.sendgridClient.Send(msg); err != nil {
		utils.Logger.WithError(err).Error("Failed to send payment receipt email")
	}
}

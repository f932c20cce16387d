package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nyumbani/rental-service/internal/repositories"
	"github.com/nyumbani/rental-service/internal/utils"
)

const (
	// leaseExpiryScanSchedule runs the daily lease scan shortly after
	// midnight, stalePaymentSweepSchedule the hourly payment sweep.
	leaseExpiryScanSchedule   = "15 0 * * *"
	stalePaymentSweepSchedule = "@hourly"
	stalePendingPaymentMaxAge = 2 * time.Hour
	jobTimeout                = 5 * time.Minute
)

// LeaseService runs the background maintenance jobs: flagging leases
// about to expire and failing mobile-money payments whose callback
// never arrived.
type LeaseService struct {
	tenantRepo repositories.TenantRepository
	paymentSvc *PaymentService
	cron       *cron.Cron
}

func NewLeaseService(tenantRepo repositories.TenantRepository, paymentSvc *PaymentService) *LeaseService {
	return &LeaseService{
		tenantRepo: tenantRepo,
		paymentSvc: paymentSvc,
		cron:       cron.New(),
	}
}

func (s *LeaseService) Start() error {
	if _, err := s.cron.AddFunc(leaseExpiryScanSchedule, s.runLeaseExpiryScan); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(stalePaymentSweepSchedule, s.runStalePaymentSweep); err != nil {
		return err
	}
	s.cron.Start()
	utils.Logger.Info("Scheduled lease expiry scan and stale payment sweep")
	return nil
}

func (s *LeaseService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *LeaseService) runLeaseExpiryScan() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.ScanExpiringLeases(ctx); err != nil {
		utils.Logger.WithError(err).Error("Lease expiry scan failed")
	}
}

// ScanExpiringLeases logs every active tenancy ending within the next
// thirty days so staff can start renewals.
func (s *LeaseService) ScanExpiringLeases(ctx context.Context) error {
	now := time.Now()
	expiring, err := s.tenantRepo.ExpiringLeases(ctx, now, now.AddDate(0, 0, leaseExpiryWindowDays))
	if err != nil {
		return err
	}
	for _, t := range expiring {
		utils.Logger.Infof("Lease for tenant %s (%s) ends %s", t.ID, t.FullName(), t.LeaseEndDate.Format("2006-01-02"))
	}
	if len(expiring) > 0 {
		utils.Logger.Infof("%d leases expire within %d days", len(expiring), leaseExpiryWindowDays)
	}
	return nil
}

func (s *LeaseService) runStalePaymentSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.paymentSvc.FailStalePending(ctx, stalePendingPaymentMaxAge)
	if err != nil {
		utils.Logger.WithError(err).Error("Stale payment sweep failed")
		return
	}
	if n > 0 {
		utils.Logger.Infof("Marked %d stale pending payments as failed", n)
	}
}

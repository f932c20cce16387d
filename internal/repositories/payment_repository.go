package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/nyumbani/rental-service/internal/models"
)

/* ───────────── public interface ───────────── */

// PaymentFilter narrows List. Search matches tenant names and the
// reference number.
type PaymentFilter struct {
	Search   string
	TenantID *uuid.UUID
	Type     models.PaymentType
	Method   models.PaymentMethodType
	Status   models.PaymentStatusType
}

// MonthTotal is one month of the financial report's revenue series.
type MonthTotal struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// TypeTotal groups completed revenue by payment type.
type TypeTotal struct {
	PaymentType models.PaymentType `json:"payment_type"`
	Total       decimal.Decimal    `json:"total"`
}

// PropertyTotal groups completed revenue by the property reached
// through tenant→unit→property. PropertyName is nil when any hop of
// that chain is missing.
type PropertyTotal struct {
	PropertyName *string         `json:"property_name"`
	Total        decimal.Decimal `json:"total"`
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error)
	List(ctx context.Context, f PaymentFilter) ([]*models.Payment, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.Payment, error)
	FindRentPaymentForMonth(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*models.Payment, error)

	Update(ctx context.Context, p *models.Payment) error
	UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Payment) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error
	MarkStalePendingFailed(ctx context.Context, olderThan time.Time) (int64, error)

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.PaymentStatusType) (int, error)
	SumByStatus(ctx context.Context, status models.PaymentStatusType) (decimal.Decimal, error)
	SumByTenantAndStatus(ctx context.Context, tenantID uuid.UUID, status models.PaymentStatusType) (decimal.Decimal, error)
	SumCompletedForMonth(ctx context.Context, year int, month time.Month) (decimal.Decimal, error)
	MonthlyCompletedTotals(ctx context.Context, year int) ([]MonthTotal, error)
	SumCompletedByType(ctx context.Context) ([]TypeTotal, error)
	RevenueByProperty(ctx context.Context, limit int) ([]PropertyTotal, error)
}

/* ───────────── implementation ───────────── */

type paymentRepo struct {
	*BaseVersionedRepo[*models.Payment]
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	r := &paymentRepo{db: db}
	selectStmt := baseSelectPayment() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanPayment)
	return r
}

/* ---------- create ---------- */

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (
			id, tenant_id, amount, payment_type, payment_method, payment_date,
			reference_number, description, status, period_start, period_end,
			checkout_request_id, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW(), 1)
	`,
		p.ID, p.TenantID, p.Amount, p.PaymentType, p.PaymentMethod, p.PaymentDate,
		p.ReferenceNumber, p.Description, p.Status, p.PeriodStart, p.PeriodEnd,
		p.CheckoutRequestID,
	)
	if err != nil && IsUniqueViolation(err, "payments_checkout_request_id_key") {
		return ErrDuplicateCheckoutRequest
	}
	return err
}

/* ---------- reads ---------- */

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *paymentRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE checkout_request_id=$1", checkoutRequestID)
	return r.scanPayment(row)
}

// List returns payments newest payment_date first, newest created
// second.
func (r *paymentRepo) List(ctx context.Context, f PaymentFilter) ([]*models.Payment, error) {
	sql := baseSelectPayment() + " WHERE 1=1"
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := placeholder(len(args))
		sql += ` AND (reference_number ILIKE ` + n +
			` OR tenant_id IN (SELECT id FROM tenants WHERE first_name ILIKE ` + n +
			` OR last_name ILIKE ` + n + `))`
	}
	if f.TenantID != nil {
		args = append(args, *f.TenantID)
		sql += " AND tenant_id=" + placeholder(len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		sql += " AND payment_type=" + placeholder(len(args))
	}
	if f.Method != "" {
		args = append(args, f.Method)
		sql += " AND payment_method=" + placeholder(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += " AND status=" + placeholder(len(args))
	}
	sql += " ORDER BY payment_date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanPayments(rows)
}

func (r *paymentRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.Payment, error) {
	sql := baseSelectPayment() + " WHERE tenant_id=$1 ORDER BY payment_date DESC, created_at DESC"
	args := []any{tenantID}
	if limit > 0 {
		args = append(args, limit)
		sql += " LIMIT " + placeholder(len(args))
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanPayments(rows)
}

func (r *paymentRepo) FindRentPaymentForMonth(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+`
		WHERE tenant_id=$1 AND payment_type='rent'
		  AND EXTRACT(YEAR FROM payment_date)=$2 AND EXTRACT(MONTH FROM payment_date)=$3
		ORDER BY payment_date DESC LIMIT 1
	`, tenantID, year, int(month))
	return r.scanPayment(row)
}

/* ---------- update / delete ---------- */

func (r *paymentRepo) Update(ctx context.Context, p *models.Payment) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *paymentRepo) UpdateIfVersion(ctx context.Context, p *models.Payment, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *paymentRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Payment) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *paymentRepo) update(ctx context.Context, p *models.Payment, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE payments SET
			amount=$1, payment_type=$2, payment_method=$3, payment_date=$4,
			reference_number=$5, description=$6, status=$7,
			period_start=$8, period_end=$9, updated_at=NOW()
	`
	args := []any{
		p.Amount, p.PaymentType, p.PaymentMethod, p.PaymentDate,
		p.ReferenceNumber, p.Description, p.Status,
		p.PeriodStart, p.PeriodEnd,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$10 AND row_version=$11`
		args = append(args, p.ID, expected)
	} else {
		sql += ` WHERE id=$10`
		args = append(args, p.ID)
	}
	return r.db.Exec(ctx, sql, args...)
}

func (r *paymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByTenantID implements the tenant→payments CASCADE policy.
func (r *paymentRepo) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM payments WHERE tenant_id=$1`, tenantID)
	return err
}

// MarkStalePendingFailed fails mobile-money payments that never got a
// callback. Returns how many rows were flipped.
func (r *paymentRepo) MarkStalePendingFailed(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments SET status='failed', updated_at=NOW(), row_version=row_version+1
		WHERE status='pending' AND payment_method='mpesa' AND created_at < $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

/* ---------- aggregates ---------- */

func (r *paymentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n)
	return n, err
}

func (r *paymentRepo) CountByStatus(ctx context.Context, status models.PaymentStatusType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *paymentRepo) SumByStatus(ctx context.Context, status models.PaymentStatusType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status=$1`, status).Scan(&total)
	return total, err
}

func (r *paymentRepo) SumByTenantAndStatus(ctx context.Context, tenantID uuid.UUID, status models.PaymentStatusType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount),0) FROM payments WHERE tenant_id=$1 AND status=$2`,
		tenantID, status).Scan(&total)
	return total, err
}

func (r *paymentRepo) SumCompletedForMonth(ctx context.Context, year int, month time.Month) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount),0) FROM payments
		WHERE status='completed'
		  AND EXTRACT(YEAR FROM payment_date)=$1 AND EXTRACT(MONTH FROM payment_date)=$2
	`, year, int(month)).Scan(&total)
	return total, err
}

// MonthlyCompletedTotals is the group-by-month revenue series for one
// calendar year.
func (r *paymentRepo) MonthlyCompletedTotals(ctx context.Context, year int) ([]MonthTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('month', payment_date)::date AS month, SUM(amount)
		FROM payments
		WHERE status='completed' AND EXTRACT(YEAR FROM payment_date)=$1
		GROUP BY month
		ORDER BY month
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthTotal
	for rows.Next() {
		var mt MonthTotal
		if err := rows.Scan(&mt.Month, &mt.Total); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

func (r *paymentRepo) SumCompletedByType(ctx context.Context) ([]TypeTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT payment_type, SUM(amount)
		FROM payments WHERE status='completed'
		GROUP BY payment_type
		ORDER BY SUM(amount) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeTotal
	for rows.Next() {
		var tt TypeTotal
		if err := rows.Scan(&tt.PaymentType, &tt.Total); err != nil {
			return nil, err
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// RevenueByProperty walks payment→tenant→unit→property; every hop is
// nullable, so payments that lost their unit or property still show up
// under a nil property name.
func (r *paymentRepo) RevenueByProperty(ctx context.Context, limit int) ([]PropertyTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pr.name, SUM(p.amount)
		FROM payments p
		JOIN tenants t  ON t.id = p.tenant_id
		LEFT JOIN units u       ON u.id = t.unit_id
		LEFT JOIN properties pr ON pr.id = u.property_id
		WHERE p.status='completed'
		GROUP BY pr.name
		ORDER BY SUM(p.amount) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PropertyTotal
	for rows.Next() {
		var pt PropertyTotal
		if err := rows.Scan(&pt.PropertyName, &pt.Total); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

/* ---------- internals ---------- */

func baseSelectPayment() string {
	return `
		SELECT id, tenant_id, amount, payment_type, payment_method, payment_date,
		       reference_number, description, status, period_start, period_end,
		       checkout_request_id, created_at, updated_at, row_version
		FROM payments`
}

func (r *paymentRepo) scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Amount, &p.PaymentType, &p.PaymentMethod, &p.PaymentDate,
		&p.ReferenceNumber, &p.Description, &p.Status, &p.PeriodStart, &p.PeriodEnd,
		&p.CheckoutRequestID, &p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) scanPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var out []*models.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

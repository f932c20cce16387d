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

// TenantFilter narrows List. Search matches first name, last name,
// email and phone.
type TenantFilter struct {
	Search     string
	Status     models.TenantStatusType
	PropertyID *uuid.UUID
}

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error)
	FindByPhoneSuffix(ctx context.Context, suffix string) (*models.Tenant, error)
	List(ctx context.Context, f TenantFilter) ([]*models.Tenant, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Tenant, error)

	Update(ctx context.Context, t *models.Tenant) error
	UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearUnitReferences(ctx context.Context, unitID uuid.UUID) error
	ClearUserReferences(ctx context.Context, userID uuid.UUID) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.TenantStatusType) (int, error)
	ExpiringLeases(ctx context.Context, from, to time.Time) ([]*models.Tenant, error)
}

/* ───────────── implementation ───────────── */

type tenantRepo struct {
	*BaseVersionedRepo[*models.Tenant]
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	r := &tenantRepo{db: db}
	selectStmt := baseSelectTenant() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanTenant)
	return r
}

/* ---------- create ---------- */

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tenants (
			id, user_id, first_name, last_name, email, phone, id_number, unit_id,
			lease_start_date, lease_end_date, rent_amount, deposit_paid,
			emergency_contact_name, emergency_contact_phone, status, notes,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, NOW(), NOW(), 1)
	`,
		t.ID, t.UserID, t.FirstName, t.LastName, t.Email, t.Phone, t.IDNumber, t.UnitID,
		t.LeaseStartDate, t.LeaseEndDate, t.RentAmount, t.DepositPaid,
		t.EmergencyContactName, t.EmergencyContactPhone, t.Status, t.Notes,
	)
	if err != nil && IsUniqueViolation(err, "tenants_email_key") {
		return ErrDuplicateEmail
	}
	return err
}

/* ---------- reads ---------- */

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *tenantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx, baseSelectTenant()+" WHERE user_id=$1", userID)
	return r.scanTenant(row)
}

// FindByPhoneSuffix matches the payer of a mobile-money callback to a
// tenant by the trailing digits of the stored phone number. Ordering by
// id makes the "first match wins" rule deterministic when several
// tenants share a suffix.
func (r *tenantRepo) FindByPhoneSuffix(ctx context.Context, suffix string) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx,
		baseSelectTenant()+` WHERE phone LIKE '%' || $1 ORDER BY id LIMIT 1`, suffix)
	return r.scanTenant(row)
}

// List returns tenants ordered by last then first name.
func (r *tenantRepo) List(ctx context.Context, f TenantFilter) ([]*models.Tenant, error) {
	sql := baseSelectTenant() + " WHERE 1=1"
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := placeholder(len(args))
		sql += " AND (first_name ILIKE " + n + " OR last_name ILIKE " + n +
			" OR email ILIKE " + n + " OR phone ILIKE " + n + ")"
	}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += " AND status=" + placeholder(len(args))
	}
	if f.PropertyID != nil {
		args = append(args, *f.PropertyID)
		sql += " AND unit_id IN (SELECT id FROM units WHERE property_id=" + placeholder(len(args)) + ")"
	}
	sql += " ORDER BY last_name, first_name"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTenants(rows)
}

func (r *tenantRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, baseSelectTenant()+" WHERE unit_id=$1 ORDER BY last_name, first_name", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTenants(rows)
}

/* ---------- update / delete ---------- */

func (r *tenantRepo) Update(ctx context.Context, t *models.Tenant) error {
	_, err := r.update(ctx, t, false, 0)
	return err
}

func (r *tenantRepo) UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, t, true, expected)
}

func (r *tenantRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *tenantRepo) update(ctx context.Context, t *models.Tenant, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
		UPDATE tenants SET
			user_id=$1, first_name=$2, last_name=$3, email=$4, phone=$5, id_number=$6,
			unit_id=$7, lease_start_date=$8, lease_end_date=$9, rent_amount=$10,
			deposit_paid=$11, emergency_contact_name=$12, emergency_contact_phone=$13,
			status=$14, notes=$15, updated_at=NOW()
	`
	args := []any{
		t.UserID, t.FirstName, t.LastName, t.Email, t.Phone, t.IDNumber,
		t.UnitID, t.LeaseStartDate, t.LeaseEndDate, t.RentAmount,
		t.DepositPaid, t.EmergencyContactName, t.EmergencyContactPhone,
		t.Status, t.Notes,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$16 AND row_version=$17`
		args = append(args, t.ID, expected)
	} else {
		sql += ` WHERE id=$16`
		args = append(args, t.ID)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil && IsUniqueViolation(err, "tenants_email_key") {
		return tag, ErrDuplicateEmail
	}
	return tag, err
}

// Delete removes the tenant row only. Cascading payments and releasing
// the unit happen in the owning service's transaction.
func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClearUnitReferences implements the unit→tenant SET NULL policy.
func (r *tenantRepo) ClearUnitReferences(ctx context.Context, unitID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE tenants SET unit_id=NULL, updated_at=NOW() WHERE unit_id=$1`, unitID)
	return err
}

// ClearUserReferences implements the user→tenant SET NULL policy.
func (r *tenantRepo) ClearUserReferences(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE tenants SET user_id=NULL, updated_at=NOW() WHERE user_id=$1`, userID)
	return err
}

/* ---------- aggregates ---------- */

func (r *tenantRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n)
	return n, err
}

func (r *tenantRepo) CountByStatus(ctx context.Context, status models.TenantStatusType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenants WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *tenantRepo) ExpiringLeases(ctx context.Context, from, to time.Time) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx,
		baseSelectTenant()+` WHERE lease_end_date >= $1 AND lease_end_date <= $2 ORDER BY lease_end_date`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanTenants(rows)
}

/* ---------- internals ---------- */

func baseSelectTenant() string {
	return `
		SELECT id, user_id, first_name, last_name, email, phone, id_number, unit_id,
		       lease_start_date, lease_end_date, rent_amount, deposit_paid,
		       emergency_contact_name, emergency_contact_phone, status, notes,
		       created_at, updated_at, row_version
		FROM tenants`
}

func (r *tenantRepo) scanTenant(row pgx.Row) (*models.Tenant, error) {
	var (
		t       models.Tenant
		rent    decimal.NullDecimal
		deposit decimal.NullDecimal
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.FirstName, &t.LastName, &t.Email, &t.Phone, &t.IDNumber, &t.UnitID,
		&t.LeaseStartDate, &t.LeaseEndDate, &rent, &deposit,
		&t.EmergencyContactName, &t.EmergencyContactPhone, &t.Status, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &t.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if rent.Valid {
		t.RentAmount = &rent.Decimal
	}
	if deposit.Valid {
		t.DepositPaid = &deposit.Decimal
	}
	return &t, nil
}

func (r *tenantRepo) scanTenants(rows pgx.Rows) ([]*models.Tenant, error) {
	var out []*models.Tenant
	for rows.Next() {
		t, err := r.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

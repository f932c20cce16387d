package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/nyumbani/rental-service/internal/models"
)

/* ───────────── public interface ───────────── */

// UnitFilter narrows List. Search matches the unit number and the
// owning property's name.
type UnitFilter struct {
	Search     string
	PropertyID *uuid.UUID
	Status     models.UnitStatusType
	UnitType   models.UnitType
}

// PropertyOccupancy is one row of the per-property occupancy report.
type PropertyOccupancy struct {
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name"`
	TotalUnits   int       `json:"total_units"`
	Occupied     int       `json:"occupied"`
	Available    int       `json:"available"`
}

// UnitTypeOccupancy is one row of the per-unit-type occupancy report.
type UnitTypeOccupancy struct {
	UnitType models.UnitType `json:"unit_type"`
	Total    int             `json:"total"`
	Occupied int             `json:"occupied"`
}

type UnitRepository interface {
	Create(ctx context.Context, u *models.Unit) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context, f UnitFilter) ([]*models.Unit, error)
	ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error)

	Update(ctx context.Context, u *models.Unit) error
	UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error
	SetStatus(ctx context.Context, id uuid.UUID, status models.UnitStatusType) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPropertyID(ctx context.Context, propID uuid.UUID) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.UnitStatusType) (int, error)
	CountOccupiedByProperty(ctx context.Context, propID uuid.UUID) (occupied, total int, err error)
	OccupancyByProperty(ctx context.Context) ([]PropertyOccupancy, error)
	OccupancyByUnitType(ctx context.Context) ([]UnitTypeOccupancy, error)
	SumOccupiedRent(ctx context.Context) (decimal.Decimal, error)
}

/* ───────────── implementation ───────────── */

type unitRepo struct {
	*BaseVersionedRepo[*models.Unit]
	db DB
}

func NewUnitRepository(db DB) UnitRepository {
	r := &unitRepo{db: db}
	selectStmt := baseSelectUnit() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanUnit)
	return r
}

/* ---------- create ---------- */

// Create persists the unit. is_occupied is derived from status here,
// never taken from the caller.
func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	u.IsOccupied = u.Status == models.UnitStatusOccupied
	_, err := r.db.Exec(ctx, `
		INSERT INTO units (
			id, property_id, unit_number, unit_type, floor, bedrooms, bathrooms,
			rent_amount, deposit_amount, status, is_occupied, description,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW(), 1)
	`,
		u.ID, u.PropertyID, u.UnitNumber, u.UnitType, u.Floor, u.Bedrooms, u.Bathrooms,
		u.RentAmount, u.DepositAmount, u.Status, u.IsOccupied, u.Description,
	)
	if err != nil && IsUniqueViolation(err, "units_property_id_unit_number_key") {
		return ErrDuplicateUnitNumber
	}
	return err
}

/* ---------- reads ---------- */

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

// List returns units ordered by property then unit number.
func (r *unitRepo) List(ctx context.Context, f UnitFilter) ([]*models.Unit, error) {
	sql := baseSelectUnit() + " WHERE 1=1"
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := placeholder(len(args))
		sql += ` AND (unit_number ILIKE ` + n +
			` OR property_id IN (SELECT id FROM properties WHERE name ILIKE ` + n + `))`
	}
	if f.PropertyID != nil {
		args = append(args, *f.PropertyID)
		sql += " AND property_id=" + placeholder(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += " AND status=" + placeholder(len(args))
	}
	if f.UnitType != "" {
		args = append(args, f.UnitType)
		sql += " AND unit_type=" + placeholder(len(args))
	}
	sql += " ORDER BY property_id, unit_number"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

func (r *unitRepo) ListByPropertyID(ctx context.Context, propID uuid.UUID) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, baseSelectUnit()+" WHERE property_id=$1 ORDER BY unit_number", propID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanUnits(rows)
}

/* ---------- update / delete ---------- */

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	_, err := r.update(ctx, u, false, 0)
	return err
}

func (r *unitRepo) UpdateIfVersion(ctx context.Context, u *models.Unit, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, u, true, expected)
}

func (r *unitRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Unit) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *unitRepo) update(ctx context.Context, u *models.Unit, check bool, expected int64) (pgconn.CommandTag, error) {
	u.IsOccupied = u.Status == models.UnitStatusOccupied
	sql := `
		UPDATE units SET
			unit_number=$1, unit_type=$2, floor=$3, bedrooms=$4, bathrooms=$5,
			rent_amount=$6, deposit_amount=$7, status=$8, is_occupied=$9,
			description=$10, updated_at=NOW()
	`
	args := []any{
		u.UnitNumber, u.UnitType, u.Floor, u.Bedrooms, u.Bathrooms,
		u.RentAmount, u.DepositAmount, u.Status, u.IsOccupied, u.Description,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$11 AND row_version=$12`
		args = append(args, u.ID, expected)
	} else {
		sql += ` WHERE id=$11`
		args = append(args, u.ID)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil && IsUniqueViolation(err, "units_property_id_unit_number_key") {
		return tag, ErrDuplicateUnitNumber
	}
	return tag, err
}

// SetStatus force-sets a unit's status, keeping the derived occupied
// flag in step. Used by the tenancy rules.
func (r *unitRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.UnitStatusType) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE units SET status=$1, is_occupied=$2, updated_at=NOW(), row_version=row_version+1
		WHERE id=$3
	`, status, status == models.UnitStatusOccupied, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByPropertyID implements the property→units CASCADE policy.
func (r *unitRepo) DeleteByPropertyID(ctx context.Context, propID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM units WHERE property_id=$1`, propID)
	return err
}

/* ---------- aggregates ---------- */

func (r *unitRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM units`).Scan(&n)
	return n, err
}

func (r *unitRepo) CountByStatus(ctx context.Context, status models.UnitStatusType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *unitRepo) CountOccupiedByProperty(ctx context.Context, propID uuid.UUID) (int, int, error) {
	var occupied, total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE is_occupied), COUNT(*)
		FROM units WHERE property_id=$1
	`, propID).Scan(&occupied, &total)
	return occupied, total, err
}

func (r *unitRepo) OccupancyByProperty(ctx context.Context) ([]PropertyOccupancy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name,
		       COUNT(u.id),
		       COUNT(u.id) FILTER (WHERE u.status='occupied'),
		       COUNT(u.id) FILTER (WHERE u.status='available')
		FROM properties p
		LEFT JOIN units u ON u.property_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PropertyOccupancy
	for rows.Next() {
		var po PropertyOccupancy
		if err := rows.Scan(&po.PropertyID, &po.PropertyName, &po.TotalUnits, &po.Occupied, &po.Available); err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

func (r *unitRepo) OccupancyByUnitType(ctx context.Context) ([]UnitTypeOccupancy, error) {
	rows, err := r.db.Query(ctx, `
		SELECT unit_type, COUNT(*), COUNT(*) FILTER (WHERE status='occupied')
		FROM units
		GROUP BY unit_type
		ORDER BY unit_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UnitTypeOccupancy
	for rows.Next() {
		var uo UnitTypeOccupancy
		if err := rows.Scan(&uo.UnitType, &uo.Total, &uo.Occupied); err != nil {
			return nil, err
		}
		out = append(out, uo)
	}
	return out, rows.Err()
}

// SumOccupiedRent totals the rent of occupied units – the "expected
// rent" line of the financial report.
func (r *unitRepo) SumOccupiedRent(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(rent_amount),0) FROM units WHERE status='occupied'
	`).Scan(&total)
	return total, err
}

/* ---------- internals ---------- */

func baseSelectUnit() string {
	return `
		SELECT id, property_id, unit_number, unit_type, floor, bedrooms, bathrooms,
		       rent_amount, deposit_amount, status, is_occupied, description,
		       created_at, updated_at, row_version
		FROM units`
}

func (r *unitRepo) scanUnit(row pgx.Row) (*models.Unit, error) {
	var (
		u       models.Unit
		deposit decimal.NullDecimal
	)
	if err := row.Scan(
		&u.ID, &u.PropertyID, &u.UnitNumber, &u.UnitType, &u.Floor, &u.Bedrooms, &u.Bathrooms,
		&u.RentAmount, &deposit, &u.Status, &u.IsOccupied, &u.Description,
		&u.CreatedAt, &u.UpdatedAt, &u.RowVersion,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if deposit.Valid {
		u.DepositAmount = &deposit.Decimal
	}
	return &u, nil
}

func (r *unitRepo) scanUnits(rows pgx.Rows) ([]*models.Unit, error) {
	var out []*models.Unit
	for rows.Next() {
		u, err := r.scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

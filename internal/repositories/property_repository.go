package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/nyumbani/rental-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// PropertyFilter narrows List. Search does a case-insensitive substring
// match across name, address and city; the rest are exact matches.
type PropertyFilter struct {
	Search       string
	Status       models.PropertyStatusType
	PropertyType models.PropertyType
}

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	List(ctx context.Context, f PropertyFilter) ([]*models.Property, error)

	Update(ctx context.Context, p *models.Property) error
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearManagerReferences(ctx context.Context, managerID uuid.UUID) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.PropertyStatusType) (int, error)
	SumTotalUnits(ctx context.Context) (int, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, name, property_type, address, city, county, description,
            total_units, status, manager_id,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW(), 1)
    `,
		p.ID,
		p.Name,
		p.PropertyType,
		p.Address,
		p.City,
		p.County,
		p.Description,
		p.TotalUnits,
		p.Status,
		p.ManagerID,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

// List returns properties newest first.
func (r *propertyRepo) List(ctx context.Context, f PropertyFilter) ([]*models.Property, error) {
	sql := baseSelectProperty() + " WHERE 1=1"
	var args []any

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := placeholder(len(args))
		sql += " AND (name ILIKE " + n + " OR address ILIKE " + n + " OR city ILIKE " + n + ")"
	}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += " AND status=" + placeholder(len(args))
	}
	if f.PropertyType != "" {
		args = append(args, f.PropertyType)
		sql += " AND property_type=" + placeholder(len(args))
	}
	sql += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) update(ctx context.Context, p *models.Property, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE properties SET
            name=$1, property_type=$2, address=$3, city=$4, county=$5,
            description=$6, total_units=$7, status=$8, manager_id=$9, updated_at=NOW()
    `
	args := []any{
		p.Name, p.PropertyType, p.Address, p.City, p.County,
		p.Description, p.TotalUnits, p.Status, p.ManagerID,
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

// Delete removes the property row only. Cascading its units is the
// owning service's job so it happens inside one transaction.
func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ClearManagerReferences implements the manager SET NULL policy when a
// login identity is removed.
func (r *propertyRepo) ClearManagerReferences(ctx context.Context, managerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE properties SET manager_id=NULL, updated_at=NOW() WHERE manager_id=$1`, managerID)
	return err
}

func (r *propertyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

func (r *propertyRepo) CountByStatus(ctx context.Context, status models.PropertyStatusType) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *propertyRepo) SumTotalUnits(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_units),0) FROM properties`).Scan(&n)
	return n, err
}

func baseSelectProperty() string {
	return `
        SELECT
            id, name, property_type, address, city, county, description,
            total_units, status, manager_id,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.PropertyType,
		&p.Address,
		&p.City,
		&p.County,
		&p.Description,
		&p.TotalUnits,
		&p.Status,
		&p.ManagerID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

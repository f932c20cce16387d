package repositories

import (
	"context"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyumbani/rental-service/internal/utils"
)

type versionedRow struct {
	id      string
	version int64
	value   string
}

func (r *versionedRow) GetID() string         { return r.id }
func (r *versionedRow) GetRowVersion() int64  { return r.version }
func (r *versionedRow) SetRowVersion(v int64) { r.version = v }

func TestWithRetrySucceeds(t *testing.T) {
	row := &versionedRow{id: "r1", version: 3}

	err := WithRetry(context.Background(), 3, "r1",
		func(_ context.Context, _ string) (*versionedRow, error) { return row, nil },
		func(_ context.Context, _ *versionedRow, _ int64) (pgconn.CommandTag, error) {
			return pgconn.CommandTag("UPDATE 1"), nil
		},
		func(r *versionedRow) error {
			r.value = "updated"
			return nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "updated", row.value)
}

func TestWithRetryExhaustionIsRowVersionConflict(t *testing.T) {
	row := &versionedRow{id: "r1", version: 3}
	attempts := 0

	err := WithRetry(context.Background(), 3, "r1",
		func(_ context.Context, _ string) (*versionedRow, error) { return row, nil },
		func(_ context.Context, _ *versionedRow, _ int64) (pgconn.CommandTag, error) {
			attempts++
			// Every attempt loses the race.
			return pgconn.CommandTag("UPDATE 0"), nil
		},
		func(*versionedRow) error { return nil },
	)

	assert.ErrorIs(t, err, utils.ErrRowVersionConflict)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryMissingRow(t *testing.T) {
	err := WithRetry(context.Background(), 3, "r1",
		func(_ context.Context, _ string) (*versionedRow, error) { return nil, nil },
		func(_ context.Context, _ *versionedRow, _ int64) (pgconn.CommandTag, error) {
			t.Fatal("update must not run when the row is missing")
			return nil, nil
		},
		func(*versionedRow) error { return nil },
	)

	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

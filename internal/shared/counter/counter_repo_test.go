package counter_test

import (
	"context"
	"testing"

	"masar-finance/internal/shared/counter"
	"masar-finance/internal/shared/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetNextValue(t *testing.T) {
	ctx := context.Background()
	db, sqlDB := dbtest.Open(t, &counter.OrganizationCounter{})
	repo := counter.NewRepository(db)
	orgA, orgB := uuid.NewString(), uuid.NewString()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.GetNextValue(ctx, orgA, counter.PayrollRunNumber)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.GetNextValue(ctx, orgB, counter.PayrollRunNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "counters are per organization")

	t.Run("rolled back increment is not kept", func(t *testing.T) {
		tx, err := sqlDB.BeginTx(ctx, nil)
		require.NoError(t, err)

		got, err := repo.WithTx(tx).GetNextValue(ctx, orgA, counter.PayrollRunNumber)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got)
		require.NoError(t, tx.Rollback())

		got, err = repo.GetNextValue(ctx, orgA, counter.PayrollRunNumber)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got)
	})
}

package account_test

import (
	"context"
	"testing"

	"masar-finance/internal/account"
	"masar-finance/internal/account/accounttest"
	accounterrors "masar-finance/internal/account/errors"
	"masar-finance/internal/shared/dbtest"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GetBalance(t *testing.T) {
	ctx := context.Background()
	db, _ := dbtest.Open(t, &account.Account{})
	svc := account.NewService(account.NewRepository(db))
	org := uuid.New()
	acc := accounttest.Seed(t, db, org, 5000000, true)

	resp, err := svc.GetBalance(ctx, org.String(), acc.ID.String())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(resp.Balance))
	assert.Equal(t, "SAR", resp.Currency)

	_, err = svc.GetBalance(ctx, uuid.NewString(), acc.ID.String())
	assert.ErrorIs(t, err, accounterrors.ErrAccountNotFound)

	_, err = svc.GetBalance(ctx, "", acc.ID.String())
	assert.ErrorIs(t, err, tenant.ErrInvalidOrganizationID)
}

func TestService_GetAll(t *testing.T) {
	ctx := context.Background()
	db, _ := dbtest.Open(t, &account.Account{})
	svc := account.NewService(account.NewRepository(db))
	org := uuid.New()
	accounttest.Seed(t, db, org, 1, true)
	accounttest.Seed(t, db, org, 2, true)
	accounttest.Seed(t, db, uuid.New(), 3, true)

	resp, err := svc.GetAll(ctx, org.String())
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	for _, a := range resp {
		assert.Equal(t, org.String(), a.OrganizationID)
	}
}

func TestRequireActive(t *testing.T) {
	ctx := context.Background()
	db, _ := dbtest.Open(t, &account.Account{})
	repo := account.NewRepository(db)
	org := uuid.New()
	active := accounttest.Seed(t, db, org, 1, true)
	inactive := accounttest.Seed(t, db, org, 1, false)

	got, err := account.RequireActive(ctx, repo, org.String(), active.ID.String())
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = account.RequireActive(ctx, repo, org.String(), inactive.ID.String())
	assert.ErrorIs(t, err, accounterrors.ErrAccountInactive)
}

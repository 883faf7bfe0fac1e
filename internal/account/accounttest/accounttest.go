// Package accounttest seeds accounts for ledger tests in other packages.
package accounttest

import (
	"context"
	"testing"

	"masar-finance/internal/account"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Seed creates an account whose opening balance equals balance.
func Seed(t *testing.T, db *gorm.DB, org uuid.UUID, balance int64, active bool) account.Account {
	t.Helper()
	a := account.Account{
		ID:             uuid.New(),
		OrganizationID: org,
		Name:           "Account " + uuid.NewString()[:8],
		Kind:           account.KindBank,
		Currency:       "SAR",
		Balance:        balance,
		OpeningBalance: balance,
		IsActive:       active,
	}
	require.NoError(t, account.NewRepository(db).Create(context.Background(), &a))
	return a
}

// Balance reads the stored balance of a.
func Balance(t *testing.T, db *gorm.DB, a account.Account) int64 {
	t.Helper()
	got, err := account.NewRepository(db).FindByID(context.Background(), a.OrganizationID.String(), a.ID.String())
	require.NoError(t, err)
	return got.Balance
}

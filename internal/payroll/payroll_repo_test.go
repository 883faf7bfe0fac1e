package payroll_test

import (
	"context"
	"testing"
	"time"

	"masar-finance/internal/payroll"
	payrollerrors "masar-finance/internal/payroll/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollRepository_LinkExpense(t *testing.T) {
	ctx := context.Background()
	deps := setupPayrollServiceTest(t)
	repo := payroll.NewRepository(deps.db)

	item := payroll.RunItem{
		ID:             uuid.New(),
		PayrollRunID:   uuid.New(),
		OrganizationID: deps.org,
		EmployeeID:     uuid.New(),
		EmployeeName:   "Employee E-001",
		BaseSalary:     100000,
		NetSalary:      100000,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, deps.db.Create(&item).Error)

	t.Run("links the expense", func(t *testing.T) {
		expenseID := uuid.New()
		require.NoError(t, repo.LinkExpense(ctx, deps.org.String(), item.ID, expenseID))

		var got payroll.RunItem
		require.NoError(t, deps.db.First(&got, "id = ?", item.ID).Error)
		require.NotNil(t, got.FinanceExpenseID)
		assert.Equal(t, expenseID, *got.FinanceExpenseID)
	})

	t.Run("unknown item", func(t *testing.T) {
		err := repo.LinkExpense(ctx, deps.org.String(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, payrollerrors.ErrPayrollRunNotFound)
	})

	t.Run("item of another organization", func(t *testing.T) {
		err := repo.LinkExpense(ctx, uuid.NewString(), item.ID, uuid.New())
		assert.ErrorIs(t, err, payrollerrors.ErrPayrollRunNotFound)
	})
}

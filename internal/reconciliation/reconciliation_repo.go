package reconciliation

import (
	"context"
	"database/sql"

	"masar-finance/internal/expense"
	"masar-finance/internal/payment"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"
	"masar-finance/internal/transfer"

	"gorm.io/gorm"
)

// Totals are the settled movements of one account, in minor units.
type Totals struct {
	PaymentsIn   int64
	TransfersIn  int64
	ExpensesOut  int64
	TransfersOut int64
}

//go:generate mockgen -source=reconciliation_repo.go -destination=mock/reconciliation_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Totals(ctx context.Context, organizationID, accountID string) (Totals, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

const sumAmount = "CAST(COALESCE(SUM(amount), 0) AS BIGINT)"

// Totals sums the settled history. A cancelled expense has already given its
// paid amount back, so only live expenses count as outflow.
func (r *repository) Totals(ctx context.Context, organizationID, accountID string) (Totals, error) {
	var totals Totals

	err := r.sum(ctx, &payment.Payment{}, sumAmount, organizationID, &totals.PaymentsIn,
		"destination_account_id = ? AND status = ?", accountID, payment.StatusCompleted)
	if err != nil {
		return Totals{}, err
	}

	err = r.sum(ctx, &transfer.Transfer{}, sumAmount, organizationID, &totals.TransfersIn,
		"to_account_id = ? AND status = ?", accountID, transfer.StatusCompleted)
	if err != nil {
		return Totals{}, err
	}

	err = r.sum(ctx, &transfer.Transfer{}, sumAmount, organizationID, &totals.TransfersOut,
		"from_account_id = ? AND status = ?", accountID, transfer.StatusCompleted)
	if err != nil {
		return Totals{}, err
	}

	err = r.sum(ctx, &expense.Expense{}, "CAST(COALESCE(SUM(paid_amount), 0) AS BIGINT)", organizationID, &totals.ExpensesOut,
		"source_account_id = ? AND status <> ?", accountID, expense.StatusCancelled)
	if err != nil {
		return Totals{}, err
	}

	return totals, nil
}

func (r *repository) sum(
	ctx context.Context,
	model any,
	expr string,
	organizationID string,
	dest *int64,
	where string,
	args ...any,
) error {
	return r.db.WithContext(ctx).
		Model(model).
		Scopes(tenant.Scope(organizationID)).
		Where(where, args...).
		Select(expr).
		Scan(dest).Error
}

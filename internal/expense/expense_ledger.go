package expense

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"masar-finance/internal/account"
	expenseerrors "masar-finance/internal/expense/errors"

	"github.com/google/uuid"
)

// Ledger moves money for expenses. It never opens a transaction itself:
// callers bind it with WithTx so the expense row and the account balance
// change commit together. Payroll uses it to settle facility expenses.
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	Create(ctx context.Context, expense *Expense) error
	Pay(ctx context.Context, organizationID, expenseID, sourceAccountID string, amount *int64) (*Expense, error)
	Cancel(ctx context.Context, organizationID, expenseID string) (*Expense, error)
	Delete(ctx context.Context, organizationID, expenseID string) (*Expense, error)
}

type ledger struct {
	repo     Repository
	accounts account.Repository
}

func NewLedger(repo Repository, accounts account.Repository) Ledger {
	return &ledger{repo: repo, accounts: accounts}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), accounts: l.accounts.WithTx(tx)}
}

// Create inserts the expense. A COMPLETED expense is settled in full from its
// source account at once; a PENDING one has no balance effect.
func (l *ledger) Create(ctx context.Context, expense *Expense) error {
	if expense.Amount <= 0 {
		return expenseerrors.ErrInvalidAmount
	}
	if _, ok := categories[expense.Category]; !ok {
		return expenseerrors.ErrInvalidCategory
	}
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.SourceType == "" {
		expense.SourceType = SourceManual
	}
	org := expense.OrganizationID.String()

	switch expense.Status {
	case StatusCompleted:
		if expense.SourceAccountID == nil {
			return expenseerrors.ErrSourceAccountRequired
		}
		source := expense.SourceAccountID.String()
		if _, err := account.RequireActive(ctx, l.accounts, org, source); err != nil {
			return err
		}
		if err := l.accounts.Debit(ctx, org, source, expense.Amount); err != nil {
			return err
		}
		expense.PaidAmount = expense.Amount
	case StatusPending:
		if expense.SourceAccountID != nil {
			if _, err := l.accounts.FindByID(ctx, org, expense.SourceAccountID.String()); err != nil {
				return err
			}
		}
		expense.PaidAmount = 0
	default:
		return expenseerrors.ErrInvalidCreateStatus
	}

	return l.repo.Create(ctx, expense)
}

// Pay settles amount, or the whole remainder when amount is nil. Any explicit
// amount beyond the remainder, including on a settled expense, is an
// overpayment. The expense row is locked first so two payments cannot both
// pass the overpayment check.
func (l *ledger) Pay(
	ctx context.Context,
	organizationID, expenseID, sourceAccountID string,
	amount *int64,
) (*Expense, error) {
	expense, err := l.repo.FindByIDForUpdate(ctx, organizationID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Status == StatusCancelled {
		return nil, expenseerrors.ErrExpenseCancelled
	}

	if amount != nil && *amount <= 0 {
		return nil, expenseerrors.ErrInvalidAmount
	}

	remaining := expense.Remaining()
	if remaining <= 0 {
		if amount != nil {
			return nil, expenseerrors.ErrOverpayment
		}
		return nil, expenseerrors.ErrExpenseAlreadySettled
	}

	increment := remaining
	if amount != nil {
		if *amount > remaining {
			return nil, expenseerrors.ErrOverpayment
		}
		increment = *amount
	}

	sourceUUID, err := uuid.Parse(sourceAccountID)
	if err != nil {
		return nil, expenseerrors.ErrSourceAccountRequired
	}
	if expense.PaidAmount > 0 && expense.SourceAccountID != nil && *expense.SourceAccountID != sourceUUID {
		return nil, expenseerrors.ErrSourceAccountMismatch
	}

	next := StatusPending
	if expense.PaidAmount+increment == expense.Amount {
		next = StatusCompleted
	}
	if err := CheckTransition(expense.Status, next); err != nil {
		return nil, err
	}

	if _, err := account.RequireActive(ctx, l.accounts, organizationID, sourceAccountID); err != nil {
		return nil, err
	}
	if err := l.accounts.Debit(ctx, organizationID, sourceAccountID, increment); err != nil {
		return nil, err
	}

	expense.PaidAmount += increment
	expense.SourceAccountID = &sourceUUID
	expense.Status = next
	if err := l.repo.UpdateSettlement(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Cancel gives the paid part back to the source account and closes the
// expense. Cancelling twice is rejected so funds are never restored twice.
func (l *ledger) Cancel(ctx context.Context, organizationID, expenseID string) (*Expense, error) {
	expense, err := l.repo.FindByIDForUpdate(ctx, organizationID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Status == StatusCancelled {
		return nil, expenseerrors.ErrExpenseAlreadyCancelled
	}
	if err := CheckTransition(expense.Status, StatusCancelled); err != nil {
		return nil, err
	}

	if err := l.restore(ctx, expense); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expense.Status = StatusCancelled
	expense.CancelledAt = &now
	if err := l.repo.UpdateSettlement(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes a manual expense after giving back what was paid on it.
// A cancelled expense has already been restored.
func (l *ledger) Delete(ctx context.Context, organizationID, expenseID string) (*Expense, error) {
	expense, err := l.repo.FindByIDForUpdate(ctx, organizationID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.SourceType != SourceManual {
		return nil, expenseerrors.ErrDeleteFacilityExpense
	}

	if expense.Status != StatusCancelled {
		if err := l.restore(ctx, expense); err != nil {
			return nil, err
		}
	}

	if err := l.repo.Delete(ctx, organizationID, expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

func (l *ledger) restore(ctx context.Context, expense *Expense) error {
	if expense.PaidAmount == 0 {
		return nil
	}
	if expense.SourceAccountID == nil {
		return fmt.Errorf("expense %s has paid amount %d without a source account", expense.ID, expense.PaidAmount)
	}
	return l.accounts.Credit(ctx, expense.OrganizationID.String(), expense.SourceAccountID.String(), expense.PaidAmount)
}

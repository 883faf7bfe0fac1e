package expense

import (
	"context"
	"database/sql"
	"errors"
	"time"

	expenseerrors "masar-finance/internal/expense/errors"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryFilter struct {
	Status     *Status
	SourceType *SourceType
	ProjectID  *uuid.UUID
}

//go:generate mockgen -source=expense_repo.go -destination=mock/expense_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, expense *Expense) error
	FindByID(ctx context.Context, organizationID, id string) (*Expense, error)
	FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Expense, error)
	FindAllByOrganization(ctx context.Context, organizationID string, filter QueryFilter) ([]Expense, error)
	UpdateSettlement(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, organizationID, id string) error
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

func (r *repository) Create(ctx context.Context, expense *Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Expense, error) {
	return r.find(r.db.WithContext(ctx), organizationID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Expense, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), organizationID, id)
}

func (r *repository) find(db *gorm.DB, organizationID, id string) (*Expense, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, expenseerrors.ErrExpenseNotFound
	}

	var expense Expense
	err := db.Scopes(tenant.Scope(organizationID)).
		First(&expense, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &expense, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string, filter QueryFilter) ([]Expense, error) {
	var expenses []Expense

	db := r.db.WithContext(ctx).Scopes(tenant.Scope(organizationID))
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.SourceType != nil {
		db = db.Where("source_type = ?", *filter.SourceType)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}

	err := db.Order("expense_date DESC, created_at DESC").Find(&expenses).Error
	return expenses, err
}

// UpdateSettlement writes the settlement fields of an expense loaded in the
// same transaction.
func (r *repository) UpdateSettlement(ctx context.Context, expense *Expense) error {
	expense.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&Expense{}).
		Scopes(tenant.Scope(expense.OrganizationID.String())).
		Where("id = ?", expense.ID).
		Updates(map[string]any{
			"paid_amount":       expense.PaidAmount,
			"status":            expense.Status,
			"source_account_id": expense.SourceAccountID,
			"cancelled_at":      expense.CancelledAt,
			"updated_at":        expense.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expenseerrors.ErrExpenseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, organizationID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", id).
		Delete(&Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return expenseerrors.ErrExpenseNotFound
	}
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return expenseerrors.ErrExpenseNotFound
	}
	return err
}

package payroll

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	payrollerrors "masar-finance/internal/payroll/errors"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QueryFilter struct {
	Year   int
	Status *Status
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, organizationID, id string) (*Run, error)
	FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Run, error)
	FindByIDWithItems(ctx context.Context, organizationID, id string) (*Run, error)
	FindAllByOrganization(ctx context.Context, organizationID string, filter QueryFilter) ([]Run, error)
	HasActiveRun(ctx context.Context, organizationID string, month, year int) (bool, error)
	UpsertItems(ctx context.Context, items []RunItem) error
	DeleteItemsExcept(ctx context.Context, organizationID, runID string, employeeIDs []uuid.UUID) (int64, error)
	ListItems(ctx context.Context, organizationID, runID string) ([]RunItem, error)
	RecomputeTotals(ctx context.Context, organizationID, runID string) (*Totals, error)
	LinkExpense(ctx context.Context, organizationID string, itemID, expenseID uuid.UUID) error
	Transition(ctx context.Context, run *Run, from Status) error
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

func (r *repository) Create(ctx context.Context, run *Run) error {
	return mapRepositoryError(r.db.WithContext(ctx).Omit("Items").Create(run).Error)
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Run, error) {
	return r.find(r.db.WithContext(ctx), organizationID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Run, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), organizationID, id)
}

func (r *repository) FindByIDWithItems(ctx context.Context, organizationID, id string) (*Run, error) {
	db := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("employee_no ASC, employee_name ASC")
	})
	return r.find(db, organizationID, id)
}

func (r *repository) find(db *gorm.DB, organizationID, id string) (*Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrPayrollRunNotFound
	}

	var run Run
	err := db.Scopes(tenant.Scope(organizationID)).
		First(&run, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &run, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string, filter QueryFilter) ([]Run, error) {
	var runs []Run

	db := r.db.WithContext(ctx).Scopes(tenant.Scope(organizationID))
	if filter.Year > 0 {
		db = db.Where("year = ?", filter.Year)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	err := db.Order("year DESC, month DESC, created_at DESC").Find(&runs).Error
	return runs, err
}

// HasActiveRun reports whether a non-cancelled run exists for the month.
func (r *repository) HasActiveRun(ctx context.Context, organizationID string, month, year int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Run{}).
		Scopes(tenant.Scope(organizationID)).
		Where("month = ? AND year = ? AND status <> ?", month, year, StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// UpsertItems inserts one row per employee and refreshes the amounts of rows
// that already exist. Existing ids and expense links are kept.
func (r *repository) UpsertItems(ctx context.Context, items []RunItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "payroll_run_id"}, {Name: "employee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"employee_no",
				"employee_name",
				"base_salary",
				"housing_allowance",
				"transport_allowance",
				"other_allowances",
				"gosi_deduction",
				"net_salary",
				"updated_at",
			}),
		}).
		Create(&items).Error
}

// DeleteItemsExcept removes items of employees no longer on the roster. An
// empty keep list removes every item of the run.
func (r *repository) DeleteItemsExcept(ctx context.Context, organizationID, runID string, employeeIDs []uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Where("payroll_run_id = ?", runID)
	if len(employeeIDs) > 0 {
		db = db.Where("employee_id NOT IN ?", employeeIDs)
	}

	res := db.Delete(&RunItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListItems(ctx context.Context, organizationID, runID string) ([]RunItem, error) {
	var items []RunItem
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Where("payroll_run_id = ?", runID).
		Order("employee_no ASC, employee_name ASC").
		Find(&items).Error
	return items, err
}

// RecomputeTotals aggregates the items in SQL and stores the result on the run.
func (r *repository) RecomputeTotals(ctx context.Context, organizationID, runID string) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&RunItem{}).
		Scopes(tenant.Scope(organizationID)).
		Where("payroll_run_id = ?", runID).
		Select(`CAST(COALESCE(SUM(base_salary), 0) AS BIGINT) AS total_base_salary,
			CAST(COALESCE(SUM(housing_allowance + transport_allowance + other_allowances), 0) AS BIGINT) AS total_allowances,
			CAST(COALESCE(SUM(gosi_deduction), 0) AS BIGINT) AS total_deductions,
			CAST(COALESCE(SUM(net_salary), 0) AS BIGINT) AS total_net_salary,
			COUNT(*) AS employee_count`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).
		Model(&Run{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", runID).
		Updates(map[string]any{
			"total_base_salary": totals.TotalBaseSalary,
			"total_allowances":  totals.TotalAllowances,
			"total_deductions":  totals.TotalDeductions,
			"total_net_salary":  totals.TotalNetSalary,
			"employee_count":    totals.EmployeeCount,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, payrollerrors.ErrPayrollRunNotFound
	}
	return &totals, nil
}

func (r *repository) LinkExpense(ctx context.Context, organizationID string, itemID, expenseID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&RunItem{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"finance_expense_id": expenseID,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrPayrollRunNotFound
	}
	return nil
}

// Transition stores the new status and its stamps, guarded on the status the
// caller read under lock.
func (r *repository) Transition(ctx context.Context, run *Run, from Status) error {
	run.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&Run{}).
		Scopes(tenant.Scope(run.OrganizationID.String())).
		Where("id = ? AND status = ?", run.ID, from).
		Updates(map[string]any{
			"status":               run.Status,
			"approved_by_id":       run.ApprovedByID,
			"approved_at":          run.ApprovedAt,
			"paid_at":              run.PaidAt,
			"paid_from_account_id": run.PaidFromAccountID,
			"cancelled_at":         run.CancelledAt,
			"updated_at":           run.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrInvalidStatusTransition
	}
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrPayrollRunNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && isRunConstraint(pgErr.ConstraintName) {
		return payrollerrors.ErrPayrollRunExists
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && isRunConstraint(errMsg) {
		return payrollerrors.ErrPayrollRunExists
	}

	return err
}

func isRunConstraint(s string) bool {
	return strings.Contains(s, "uq_payroll_runs_org_month") || strings.Contains(s, "uq_payroll_runs_run_no")
}

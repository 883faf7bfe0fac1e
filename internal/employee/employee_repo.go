package employee

import (
	"context"
	"database/sql"
	"errors"

	employeeerrors "masar-finance/internal/employee/errors"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, employee *Employee) (bool, error)
	FindAllByOrganization(ctx context.Context, organizationID string) ([]Employee, error)
	FindByID(ctx context.Context, organizationID, id string) (*Employee, error)
	ListActive(ctx context.Context, organizationID string) ([]Employee, error)
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

// Upsert writes the snapshot unless a newer one is already stored. A row is
// never moved to another organization. It reports whether a row changed.
func (r *repository) Upsert(ctx context.Context, employee *Employee) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"employee_no",
				"full_name",
				"is_active",
				"base_salary",
				"housing_allowance",
				"transport_allowance",
				"other_allowances",
				"gosi_deduction",
				"source_updated_at",
				"updated_at",
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "employees.organization_id = excluded.organization_id"},
				clause.Expr{SQL: "employees.source_updated_at <= excluded.source_updated_at"},
			}},
		}).
		Create(employee)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}

	var employee Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		First(&employee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// ListActive returns the population source of a payroll run, ordered so
// repeated runs see employees in the same order.
func (r *repository) ListActive(ctx context.Context, organizationID string) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Where("is_active = ?", true).
		Order("employee_no ASC, id ASC").
		Find(&employees).Error
	return employees, err
}

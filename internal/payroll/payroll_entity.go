package payroll

import (
	"time"

	payrollerrors "masar-finance/internal/payroll/errors"
	"masar-finance/internal/shared/fsm"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusApproved  Status = "APPROVED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

var transitions = fsm.Table[Status]{
	StatusDraft:    {StatusApproved, StatusCancelled},
	StatusApproved: {StatusPaid, StatusCancelled},
}

func CheckTransition(from, to Status) error {
	return transitions.Check(from, to, payrollerrors.ErrInvalidStatusTransition)
}

// Run is one month of salaries for an organization. Totals are always
// recomputed from the items by the database.
type Run struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_runs_run_no;index:idx_payroll_runs_period"`
	RunNo          string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_payroll_runs_run_no"`
	Month          int       `gorm:"not null;index:idx_payroll_runs_period"`
	Year           int       `gorm:"not null;index:idx_payroll_runs_period"`
	Status         Status    `gorm:"type:varchar(20);not null"`
	Notes          string    `gorm:"type:text"`

	// Financials in minor units.
	TotalBaseSalary int64 `gorm:"type:bigint;not null;default:0"`
	TotalAllowances int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions int64 `gorm:"type:bigint;not null;default:0"`
	TotalNetSalary  int64 `gorm:"type:bigint;not null;default:0"`
	EmployeeCount   int   `gorm:"not null;default:0"`

	CreatedByID       uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedByID      *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt        *time.Time
	PaidAt            *time.Time
	PaidFromAccountID *uuid.UUID `gorm:"type:uuid"`
	CancelledAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []RunItem `gorm:"foreignKey:PayrollRunID"`
}

func (Run) TableName() string {
	return "payroll_runs"
}

// RunItem is one employee's salary inside a run. FinanceExpenseID points at
// the expense created on approval; it is a plain reference, not a cascade.
type RunItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	PayrollRunID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_run_items_employee"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_run_items_employee"`
	EmployeeNo     string    `gorm:"type:varchar(50)"`
	EmployeeName   string    `gorm:"type:varchar(200);not null"`

	BaseSalary         int64 `gorm:"type:bigint;not null;default:0"`
	HousingAllowance   int64 `gorm:"type:bigint;not null;default:0"`
	TransportAllowance int64 `gorm:"type:bigint;not null;default:0"`
	OtherAllowances    int64 `gorm:"type:bigint;not null;default:0"`
	GosiDeduction      int64 `gorm:"type:bigint;not null;default:0"`
	NetSalary          int64 `gorm:"type:bigint;not null;default:0"`

	FinanceExpenseID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RunItem) TableName() string {
	return "payroll_run_items"
}

// Totals is the database aggregate of a run's items.
type Totals struct {
	TotalBaseSalary int64
	TotalAllowances int64
	TotalDeductions int64
	TotalNetSalary  int64
	EmployeeCount   int
}

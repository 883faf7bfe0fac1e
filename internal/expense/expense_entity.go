package expense

import (
	"time"

	expenseerrors "masar-finance/internal/expense/errors"
	"masar-finance/internal/shared/fsm"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type SourceType string

const (
	SourceManual          SourceType = "MANUAL"
	SourceFacilityPayroll SourceType = "FACILITY_PAYROLL"
)

type Category string

const (
	CategoryMaterials     Category = "MATERIALS"
	CategoryLabor         Category = "LABOR"
	CategorySubcontractor Category = "SUBCONTRACTOR"
	CategoryEquipment     Category = "EQUIPMENT"
	CategoryTransport     Category = "TRANSPORT"
	CategoryUtilities     Category = "UTILITIES"
	CategoryRent          Category = "RENT"
	CategorySalaries      Category = "SALARIES"
	CategoryOther         Category = "OTHER"
)

var categories = map[Category]struct{}{
	CategoryMaterials:     {},
	CategoryLabor:         {},
	CategorySubcontractor: {},
	CategoryEquipment:     {},
	CategoryTransport:     {},
	CategoryUtilities:     {},
	CategoryRent:          {},
	CategorySalaries:      {},
	CategoryOther:         {},
}

// A PENDING expense stays PENDING while it is partially paid.
var transitions = fsm.Table[Status]{
	StatusPending:   {StatusPending, StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCancelled},
}

// CheckTransition rejects a status change the expense lifecycle does not allow.
func CheckTransition(from, to Status) error {
	return transitions.Check(from, to, expenseerrors.ErrInvalidStatusTransition)
}

// Expense is a cost record. PaidAmount is the part already debited from
// SourceAccountID and is what a cancel or delete gives back.
type Expense struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index:idx_expenses_organization"`
	ProjectID      *uuid.UUID `gorm:"type:uuid"`
	Category       Category   `gorm:"type:varchar(30);not null"`
	Description    string     `gorm:"type:text"`

	// minor units
	Amount     int64 `gorm:"type:bigint;not null"`
	PaidAmount int64 `gorm:"type:bigint;not null;default:0"`

	Status          Status     `gorm:"type:varchar(20);not null;index:idx_expenses_status"`
	SourceAccountID *uuid.UUID `gorm:"type:uuid;index:idx_expenses_source_account"`
	SourceType      SourceType `gorm:"type:varchar(30);not null"`
	SourceID        *uuid.UUID `gorm:"type:uuid"`
	ExpenseDate     time.Time  `gorm:"type:date;not null"`
	CreatedByID     uuid.UUID  `gorm:"type:uuid;not null"`
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *Expense) Remaining() int64 {
	return e.Amount - e.PaidAmount
}

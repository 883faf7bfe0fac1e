package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the finance side snapshot of an HR employee. It holds only
// what payroll needs and is written by the compensation consumer.
type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_employees_organization"`
	EmployeeNo     string    `gorm:"type:varchar(50)"`
	FullName       string    `gorm:"type:varchar(200);not null"`
	IsActive       bool      `gorm:"not null"`

	// minor units
	BaseSalary         int64 `gorm:"type:bigint;not null;default:0"`
	HousingAllowance   int64 `gorm:"type:bigint;not null;default:0"`
	TransportAllowance int64 `gorm:"type:bigint;not null;default:0"`
	OtherAllowances    int64 `gorm:"type:bigint;not null;default:0"`
	GosiDeduction      int64 `gorm:"type:bigint;not null;default:0"`

	SourceUpdatedAt time.Time `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NetSalary is base plus allowances minus deductions.
func (e Employee) NetSalary() int64 {
	return e.BaseSalary + e.HousingAllowance + e.TransportAllowance + e.OtherAllowances - e.GosiDeduction
}

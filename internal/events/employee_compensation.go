package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const EmployeeCompensationTopic = "hr.employee.compensation.v1"

const (
	EmployeeCompensationChanged = "employee_compensation_changed"
	EmployeeTerminated          = "employee_terminated"
)

// EmployeeCompensationEvent is published by HR whenever an employee's pay or
// employment status changes. Amounts are decimal strings in the
// organization currency.
type EmployeeCompensationEvent struct {
	EventType          string          `json:"event_type"`
	EmployeeID         string          `json:"employee_id"`
	OrganizationID     string          `json:"organization_id"`
	EmployeeNo         string          `json:"employee_no"`
	FullName           string          `json:"full_name"`
	IsActive           bool            `json:"is_active"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	OtherAllowances    decimal.Decimal `json:"other_allowances"`
	GosiDeduction      decimal.Decimal `json:"gosi_deduction"`
	OccurredAt         time.Time       `json:"occurred_at"`
}

package payroll

import "github.com/shopspring/decimal"

type CreatePayrollRunRequest struct {
	Month int    `json:"month" binding:"required,min=1,max=12"`
	Year  int    `json:"year" binding:"required,min=2000,max=2100"`
	Notes string `json:"notes" binding:"max=500"`
}

type MarkPayrollRunPaidRequest struct {
	SourceAccountID string `json:"source_account_id" binding:"required,uuid"`
}

type PayrollRunFilter struct {
	Year   int    `form:"year"`
	Status string `form:"status"`
}

type PayrollRunItemResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeNo         string          `json:"employee_no"`
	EmployeeName       string          `json:"employee_name"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	OtherAllowances    decimal.Decimal `json:"other_allowances"`
	GosiDeduction      decimal.Decimal `json:"gosi_deduction"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	FinanceExpenseID   *string         `json:"finance_expense_id,omitempty"`
}

type PayrollRunResponse struct {
	ID                string                   `json:"id"`
	OrganizationID    string                   `json:"organization_id"`
	RunNo             string                   `json:"run_no"`
	Month             int                      `json:"month"`
	Year              int                      `json:"year"`
	Status            string                   `json:"status"`
	Notes             string                   `json:"notes,omitempty"`
	TotalBaseSalary   decimal.Decimal          `json:"total_base_salary"`
	TotalAllowances   decimal.Decimal          `json:"total_allowances"`
	TotalDeductions   decimal.Decimal          `json:"total_deductions"`
	TotalNetSalary    decimal.Decimal          `json:"total_net_salary"`
	EmployeeCount     int                      `json:"employee_count"`
	CreatedByID       string                   `json:"created_by_id"`
	ApprovedByID      *string                  `json:"approved_by_id,omitempty"`
	ApprovedAt        *string                  `json:"approved_at,omitempty"`
	PaidAt            *string                  `json:"paid_at,omitempty"`
	PaidFromAccountID *string                  `json:"paid_from_account_id,omitempty"`
	CancelledAt       *string                  `json:"cancelled_at,omitempty"`
	CreatedAt         string                   `json:"created_at"`
	Items             []PayrollRunItemResponse `json:"items,omitempty"`
}

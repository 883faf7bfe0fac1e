package employee

import "github.com/shopspring/decimal"

type EmployeeResponse struct {
	ID                 string          `json:"id"`
	OrganizationID     string          `json:"organization_id"`
	EmployeeNo         string          `json:"employee_no"`
	FullName           string          `json:"full_name"`
	IsActive           bool            `json:"is_active"`
	BaseSalary         decimal.Decimal `json:"base_salary"`
	HousingAllowance   decimal.Decimal `json:"housing_allowance"`
	TransportAllowance decimal.Decimal `json:"transport_allowance"`
	OtherAllowances    decimal.Decimal `json:"other_allowances"`
	GosiDeduction      decimal.Decimal `json:"gosi_deduction"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	UpdatedAt          string          `json:"updated_at"`
}

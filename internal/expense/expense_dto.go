package expense

import "github.com/shopspring/decimal"

type CreateExpenseRequest struct {
	Category        string          `json:"category" binding:"required"`
	Description     string          `json:"description" binding:"max=500"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status" binding:"required,oneof=PENDING COMPLETED"`
	SourceAccountID *string         `json:"source_account_id" binding:"omitempty,uuid"`
	ProjectID       *string         `json:"project_id" binding:"omitempty,uuid"`
	ExpenseDate     string          `json:"expense_date"`
}

// PayExpenseRequest pays the full remaining amount when Amount is omitted.
type PayExpenseRequest struct {
	SourceAccountID string           `json:"source_account_id" binding:"required,uuid"`
	Amount          *decimal.Decimal `json:"amount"`
}

type ExpenseFilter struct {
	Status     string `form:"status"`
	SourceType string `form:"source_type"`
	ProjectID  string `form:"project_id"`
}

type ExpenseResponse struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	ProjectID       *string         `json:"project_id,omitempty"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	SourceAccountID *string         `json:"source_account_id,omitempty"`
	SourceType      string          `json:"source_type"`
	SourceID        *string         `json:"source_id,omitempty"`
	ExpenseDate     string          `json:"expense_date"`
	CreatedByID     string          `json:"created_by_id"`
	CancelledAt     *string         `json:"cancelled_at,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

package transfer

import "github.com/shopspring/decimal"

type CreateTransferRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID string          `json:"from_account_id" binding:"required,uuid"`
	ToAccountID   string          `json:"to_account_id" binding:"required,uuid"`
	TransferDate  string          `json:"transfer_date"`
	Description   string          `json:"description" binding:"max=500"`
}

type TransferResponse struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Amount         decimal.Decimal `json:"amount"`
	TransferDate   string          `json:"transfer_date"`
	FromAccountID  string          `json:"from_account_id"`
	ToAccountID    string          `json:"to_account_id"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	CreatedByID    string          `json:"created_by_id"`
	CancelledAt    *string         `json:"cancelled_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

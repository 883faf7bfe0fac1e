package payment

import "github.com/shopspring/decimal"

type CreatePaymentRequest struct {
	Amount               decimal.Decimal `json:"amount"`
	DestinationAccountID string          `json:"destination_account_id" binding:"required,uuid"`
	PaymentDate          string          `json:"payment_date"`
	ClientName           *string         `json:"client_name" binding:"omitempty,max=200"`
	ProjectID            *string         `json:"project_id" binding:"omitempty,uuid"`
	Description          string          `json:"description" binding:"max=500"`
}

type PaymentResponse struct {
	ID                   string          `json:"id"`
	OrganizationID       string          `json:"organization_id"`
	ProjectID            *string         `json:"project_id,omitempty"`
	ClientName           *string         `json:"client_name,omitempty"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentDate          string          `json:"payment_date"`
	DestinationAccountID string          `json:"destination_account_id"`
	Status               string          `json:"status"`
	CreatedByID          string          `json:"created_by_id"`
	CreatedAt            string          `json:"created_at"`
}

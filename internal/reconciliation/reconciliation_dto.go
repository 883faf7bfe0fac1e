package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Breakdown struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	PaymentsIn     decimal.Decimal `json:"payments_in"`
	TransfersIn    decimal.Decimal `json:"transfers_in"`
	ExpensesOut    decimal.Decimal `json:"expenses_out"`
	TransfersOut   decimal.Decimal `json:"transfers_out"`
}

// Report compares the stored balance of an account with the balance rebuilt
// from its history. Delta is stored minus computed.
type Report struct {
	AccountID       string          `json:"account_id"`
	OrganizationID  string          `json:"organization_id"`
	AccountName     string          `json:"account_name"`
	Currency        string          `json:"currency"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	Delta           decimal.Decimal `json:"delta"`
	IsBalanced      bool            `json:"is_balanced"`
	Breakdown       Breakdown       `json:"breakdown"`
	CheckedAt       time.Time       `json:"checked_at"`
}

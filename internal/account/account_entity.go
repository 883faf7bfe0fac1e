package account

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindBank Kind = "BANK"
	KindCash Kind = "CASH"
)

// Account is a cash or bank account. Balance is denormalised and must always
// equal OpeningBalance plus settled credits minus settled debits.
type Account struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_accounts_organization"`
	Name           string    `gorm:"type:varchar(120);not null"`
	Kind           Kind      `gorm:"column:account_type;type:varchar(10);not null"`
	Currency       string    `gorm:"type:varchar(3);not null"`

	// minor units
	Balance        int64 `gorm:"type:bigint;not null;default:0"`
	OpeningBalance int64 `gorm:"type:bigint;not null;default:0"`

	IsActive  bool `gorm:"not null"`
	IsDefault bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

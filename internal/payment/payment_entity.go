package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

// Payments are never partial, so every stored payment is settled.
const StatusCompleted Status = "COMPLETED"

// Payment is money received into DestinationAccountID.
type Payment struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_payments_organization"`
	ProjectID            *uuid.UUID `gorm:"type:uuid"`
	ClientName           *string    `gorm:"type:varchar(200)"`
	Description          string     `gorm:"type:text"`
	Amount               int64      `gorm:"type:bigint;not null"`
	PaymentDate          time.Time  `gorm:"type:date;not null"`
	DestinationAccountID uuid.UUID  `gorm:"type:uuid;not null;index:idx_payments_destination_account"`
	Status               Status     `gorm:"type:varchar(20);not null"`
	CreatedByID          uuid.UUID  `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

package transfer

import (
	"time"

	"masar-finance/internal/shared/fsm"
	transfererrors "masar-finance/internal/transfer/errors"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = fsm.Table[Status]{
	StatusCompleted: {StatusCancelled},
}

func CheckTransition(from, to Status) error {
	return transitions.Check(from, to, transfererrors.ErrInvalidStatusTransition)
}

// Transfer moves Amount from FromAccountID to ToAccountID inside one
// organization. FromAccountID never equals ToAccountID.
type Transfer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_transfers_organization"`
	Amount         int64     `gorm:"type:bigint;not null"`
	TransferDate   time.Time `gorm:"type:date;not null"`
	FromAccountID  uuid.UUID `gorm:"type:uuid;not null;index:idx_transfers_from_account"`
	ToAccountID    uuid.UUID `gorm:"type:uuid;not null;index:idx_transfers_to_account"`
	Description    string    `gorm:"type:text"`
	Status         Status    `gorm:"type:varchar(20);not null"`
	CreatedByID    uuid.UUID `gorm:"type:uuid;not null"`
	CancelledAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

package counter

import (
	"context"
	"database/sql"

	"masar-finance/internal/shared/connection"

	"gorm.io/gorm"
)

const PayrollRunNumber = "payroll_run_number"

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, organizationID string, counterType string) (int64, error)
}

// OrganizationCounter is the row behind GetNextValue.
type OrganizationCounter struct {
	OrganizationID string `gorm:"type:uuid;primaryKey"`
	CounterType    string `gorm:"type:varchar(50);primaryKey"`
	LastValue      int64  `gorm:"type:bigint;not null"`
	UpdatedAt      sql.NullTime
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) GetNextValue(ctx context.Context, organizationID string, counterType string) (int64, error) {
	var nextValue int64

	// single statement upsert so concurrent callers never get the same value
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO organization_counters (organization_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (organization_id, counter_type) DO UPDATE
		SET last_value = organization_counters.last_value + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`, organizationID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

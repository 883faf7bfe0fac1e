package transfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"
	transfererrors "masar-finance/internal/transfer/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=transfer_repo.go -destination=mock/transfer_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, organizationID, id string) (*Transfer, error)
	FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Transfer, error)
	FindAllByOrganization(ctx context.Context, organizationID string) ([]Transfer, error)
	MarkCancelled(ctx context.Context, organizationID, id string, at time.Time) error
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

func (r *repository) Create(ctx context.Context, transfer *Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Transfer, error) {
	return r.find(r.db.WithContext(ctx), organizationID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Transfer, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), organizationID, id)
}

func (r *repository) find(db *gorm.DB, organizationID, id string) (*Transfer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, transfererrors.ErrTransferNotFound
	}

	var transfer Transfer
	err := db.Scopes(tenant.Scope(organizationID)).
		First(&transfer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string) ([]Transfer, error) {
	var transfers []Transfer
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("transfer_date DESC, created_at DESC").
		Find(&transfers).Error
	return transfers, err
}

// MarkCancelled only moves a COMPLETED transfer. Zero rows means another
// request cancelled it first.
func (r *repository) MarkCancelled(ctx context.Context, organizationID, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&Transfer{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ? AND status = ?", id, StatusCompleted).
		Updates(map[string]any{
			"status":       StatusCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return transfererrors.ErrTransferAlreadyCancelled
	}
	return nil
}

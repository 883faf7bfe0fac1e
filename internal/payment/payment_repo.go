package payment

import (
	"context"
	"database/sql"
	"errors"

	paymenterrors "masar-finance/internal/payment/errors"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payment_repo.go -destination=mock/payment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, organizationID, id string) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Payment, error)
	FindAllByOrganization(ctx context.Context, organizationID string) ([]Payment, error)
	Delete(ctx context.Context, organizationID, id string) error
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

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Payment, error) {
	return r.find(r.db.WithContext(ctx), organizationID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Payment, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), organizationID, id)
}

func (r *repository) find(db *gorm.DB, organizationID, id string) (*Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, paymenterrors.ErrPaymentNotFound
	}

	var payment Payment
	err := db.Scopes(tenant.Scope(organizationID)).
		First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paymenterrors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *repository) Delete(ctx context.Context, organizationID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", id).
		Delete(&Payment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return paymenterrors.ErrPaymentNotFound
	}
	return nil
}

package account

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	accounterrors "masar-finance/internal/account/errors"
	"masar-finance/internal/shared/connection"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the account store. Debit and Credit are the only balance
// mutators and are meant to run inside the caller's transaction.
//
//go:generate mockgen -source=account_repo.go -destination=mock/account_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, organizationID, id string) (*Account, error)
	FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Account, error)
	FindAllByOrganization(ctx context.Context, organizationID string) ([]Account, error)
	ListActive(ctx context.Context) ([]Account, error)
	LockByIDs(ctx context.Context, organizationID string, ids ...string) ([]Account, error)
	Debit(ctx context.Context, organizationID, id string, amount int64) error
	Credit(ctx context.Context, organizationID, id string, amount int64) error
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

func (r *repository) Create(ctx context.Context, account *Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, organizationID, id string) (*Account, error) {
	return r.find(r.db.WithContext(ctx), organizationID, id)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, organizationID, id string) (*Account, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), organizationID, id)
}

func (r *repository) find(db *gorm.DB, organizationID, id string) (*Account, error) {
	if !isUUID(id) {
		return nil, accounterrors.ErrAccountNotFound
	}

	var account Account
	err := db.Scopes(tenant.Scope(organizationID)).
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &account, nil
}

func (r *repository) FindAllByOrganization(ctx context.Context, organizationID string) ([]Account, error) {
	var accounts []Account
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(organizationID)).
		Order("is_default DESC, name ASC").
		Find(&accounts).Error
	return accounts, err
}

// ListActive spans every organization. Only the reconciliation sweep uses it.
func (r *repository) ListActive(ctx context.Context) ([]Account, error) {
	var accounts []Account
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("organization_id, id").
		Find(&accounts).Error
	return accounts, err
}

// LockByIDs locks the given accounts in id order so that two multi-account
// operations never wait on each other in opposite order.
func (r *repository) LockByIDs(ctx context.Context, organizationID string, ids ...string) ([]Account, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !isUUID(id) {
			return nil, accounterrors.ErrAccountNotFound
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	var accounts []Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(organizationID)).
		Where("id IN ?", unique).
		Order("id").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	if len(accounts) != len(unique) {
		return nil, accounterrors.ErrAccountNotFound
	}
	return accounts, nil
}

// Debit subtracts amount only if the balance covers it. The guard is part of
// the UPDATE so a concurrent debit can never take the balance below zero.
func (r *repository) Debit(ctx context.Context, organizationID, id string, amount int64) error {
	if amount <= 0 {
		return accounterrors.ErrInvalidAmount
	}
	if !isUUID(id) {
		return accounterrors.ErrAccountNotFound
	}

	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	exists, err := r.exists(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if !exists {
		return accounterrors.ErrAccountNotFound
	}
	return accounterrors.ErrInsufficientFunds
}

func (r *repository) Credit(ctx context.Context, organizationID, id string, amount int64) error {
	if amount <= 0 {
		return accounterrors.ErrInvalidAmount
	}
	if !isUUID(id) {
		return accounterrors.ErrAccountNotFound
	}

	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return accounterrors.ErrAccountNotFound
	}
	return nil
}

func (r *repository) exists(ctx context.Context, organizationID, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Account{}).
		Scopes(tenant.Scope(organizationID)).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return accounterrors.ErrAccountNotFound
	}
	return err
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

package account

import (
	"context"

	accounterrors "masar-finance/internal/account/errors"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"go.uber.org/zap"
)

//go:generate mockgen -source=account_service.go -destination=mock/account_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, organizationID string) ([]AccountResponse, error)
	GetByID(ctx context.Context, organizationID, id string) (AccountResponse, error)
	GetBalance(ctx context.Context, organizationID, id string) (BalanceResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("account.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("account.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, organizationID string) ([]AccountResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	accounts, err := s.repo.FindAllByOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("list accounts failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("organization_id", organizationID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = mapToResponse(a)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (AccountResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return AccountResponse{}, err
	}

	account, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return AccountResponse{}, err
	}
	return mapToResponse(*account), nil
}

func (s *service) GetBalance(ctx context.Context, organizationID, id string) (BalanceResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return BalanceResponse{}, err
	}

	account, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return BalanceResponse{}, err
	}

	return BalanceResponse{
		AccountID: account.ID.String(),
		Currency:  account.Currency,
		Balance:   money.FromMinor(account.Balance),
	}, nil
}

// RequireActive locks the account row for the rest of the transaction and
// rejects inactive accounts. Forward settlements call it before a debit or
// credit; reversals skip it so funds can always be restored.
func RequireActive(ctx context.Context, repo Repository, organizationID, id string) (*Account, error) {
	account, err := repo.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, accounterrors.ErrAccountInactive
	}
	return account, nil
}

func mapToResponse(a Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID.String(),
		OrganizationID: a.OrganizationID.String(),
		Name:           a.Name,
		AccountType:    string(a.Kind),
		Currency:       a.Currency,
		Balance:        money.FromMinor(a.Balance),
		OpeningBalance: money.FromMinor(a.OpeningBalance),
		IsActive:       a.IsActive,
		IsDefault:      a.IsDefault,
	}
}

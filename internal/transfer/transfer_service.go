package transfer

import (
	"context"
	"database/sql"
	"time"

	"masar-finance/internal/account"
	accounterrors "masar-finance/internal/account/errors"
	"masar-finance/internal/audit"
	"masar-finance/internal/shared/apperror"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"
	transfererrors "masar-finance/internal/transfer/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=transfer_service.go -destination=mock/transfer_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, organizationID, actorID string, req CreateTransferRequest) (TransferResponse, error)
	Cancel(ctx context.Context, organizationID, actorID, id string) (TransferResponse, error)
	GetByID(ctx context.Context, organizationID, id string) (TransferResponse, error)
	GetAll(ctx context.Context, organizationID string) ([]TransferResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	accounts account.Repository
	emitter  audit.Emitter
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	accounts account.Repository,
	emitter audit.Emitter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("transfer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transfer.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		emitter:  audit.OrDiscard(emitter),
		logger:   l,
	}
}

func (s *service) Create(
	ctx context.Context,
	organizationID, actorID string,
	req CreateTransferRequest,
) (TransferResponse, error) {
	orgUUID, err := tenant.ParseOrganizationID(organizationID)
	if err != nil {
		return TransferResponse{}, err
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return TransferResponse{}, transfererrors.ErrInvalidActorID
	}

	transfer, err := buildTransfer(orgUUID, actorUUID, req)
	if err != nil {
		return TransferResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	accounts := s.accounts.WithTx(tx)
	from := transfer.FromAccountID.String()
	to := transfer.ToAccountID.String()

	locked, err := accounts.LockByIDs(ctx, organizationID, from, to)
	if err != nil {
		s.logFailure(ctx, "lock transfer accounts failed", err, zap.String("from", from), zap.String("to", to))
		return TransferResponse{}, err
	}
	for _, a := range locked {
		if !a.IsActive {
			return TransferResponse{}, accounterrors.ErrAccountInactive
		}
	}

	if err := accounts.Debit(ctx, organizationID, from, transfer.Amount); err != nil {
		s.logFailure(ctx, "debit transfer source failed", err, zap.String("account_id", from))
		return TransferResponse{}, err
	}
	if err := accounts.Credit(ctx, organizationID, to, transfer.Amount); err != nil {
		s.logFailure(ctx, "credit transfer destination failed", err, zap.String("account_id", to))
		return TransferResponse{}, err
	}
	if err := s.repo.WithTx(tx).Create(ctx, transfer); err != nil {
		s.logFailure(ctx, "insert transfer failed", err, zap.String("organization_id", organizationID))
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TransferResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionTransferCreated, transfer)
	return mapToResponse(*transfer), nil
}

// Cancel reverses both legs. The destination may no longer hold the amount,
// in which case the cancel fails with insufficient funds.
func (s *service) Cancel(
	ctx context.Context,
	organizationID, actorID, id string,
) (TransferResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return TransferResponse{}, err
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return TransferResponse{}, transfererrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TransferResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	accounts := s.accounts.WithTx(tx)

	transfer, err := qtx.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return TransferResponse{}, err
	}
	if transfer.Status == StatusCancelled {
		return TransferResponse{}, transfererrors.ErrTransferAlreadyCancelled
	}
	if err := CheckTransition(transfer.Status, StatusCancelled); err != nil {
		return TransferResponse{}, err
	}

	from := transfer.FromAccountID.String()
	to := transfer.ToAccountID.String()
	if _, err := accounts.LockByIDs(ctx, organizationID, from, to); err != nil {
		return TransferResponse{}, err
	}
	if err := accounts.Debit(ctx, organizationID, to, transfer.Amount); err != nil {
		s.logFailure(ctx, "reverse transfer destination failed", err,
			zap.String("transfer_id", id),
			zap.String("account_id", to),
		)
		return TransferResponse{}, err
	}
	if err := accounts.Credit(ctx, organizationID, from, transfer.Amount); err != nil {
		return TransferResponse{}, err
	}

	now := time.Now().UTC()
	if err := qtx.MarkCancelled(ctx, organizationID, id, now); err != nil {
		return TransferResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return TransferResponse{}, err
	}

	transfer.Status = StatusCancelled
	transfer.CancelledAt = &now
	s.emit(ctx, actorID, audit.ActionTransferCancelled, transfer)
	s.logger.Info("transfer cancelled",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("transfer_id", id),
	)
	return mapToResponse(*transfer), nil
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (TransferResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return TransferResponse{}, err
	}

	transfer, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return TransferResponse{}, err
	}
	return mapToResponse(*transfer), nil
}

func (s *service) GetAll(ctx context.Context, organizationID string) ([]TransferResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	transfers, err := s.repo.FindAllByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	resp := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func (s *service) emit(ctx context.Context, actorID, action string, transfer *Transfer) {
	s.emitter.Emit(ctx, audit.Event{
		OrganizationID: transfer.OrganizationID.String(),
		ActorID:        actorID,
		Action:         action,
		EntityType:     "transfer",
		EntityID:       transfer.ID.String(),
		Metadata: map[string]any{
			"amount":          money.FromMinor(transfer.Amount).StringFixed(money.Scale),
			"from_account_id": transfer.FromAccountID.String(),
			"to_account_id":   transfer.ToAccountID.String(),
		},
	})
}

func (s *service) logFailure(ctx context.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("request_id", contextutil.GetRequestID(ctx)), zap.Error(err))
	if apperror.IsExpected(err) {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func buildTransfer(orgUUID, actorUUID uuid.UUID, req CreateTransferRequest) (*Transfer, error) {
	amount, ok := money.PositiveMinor(req.Amount)
	if !ok {
		return nil, transfererrors.ErrInvalidAmount
	}

	from, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		return nil, apperror.InvalidField("from_account_id")
	}
	to, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		return nil, apperror.InvalidField("to_account_id")
	}
	if from == to {
		return nil, transfererrors.ErrSameAccount
	}

	transferDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.TransferDate != "" {
		d, err := time.Parse("2006-01-02", req.TransferDate)
		if err != nil {
			return nil, transfererrors.ErrInvalidDateFormat
		}
		transferDate = d
	}

	return &Transfer{
		ID:             uuid.New(),
		OrganizationID: orgUUID,
		Amount:         amount,
		TransferDate:   transferDate,
		FromAccountID:  from,
		ToAccountID:    to,
		Description:    req.Description,
		Status:         StatusCompleted,
		CreatedByID:    actorUUID,
	}, nil
}

func mapToResponse(t Transfer) TransferResponse {
	resp := TransferResponse{
		ID:             t.ID.String(),
		OrganizationID: t.OrganizationID.String(),
		Amount:         money.FromMinor(t.Amount),
		TransferDate:   t.TransferDate.Format("2006-01-02"),
		FromAccountID:  t.FromAccountID.String(),
		ToAccountID:    t.ToAccountID.String(),
		Description:    t.Description,
		Status:         string(t.Status),
		CreatedByID:    t.CreatedByID.String(),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
	if t.CancelledAt != nil {
		v := t.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

package payment

import (
	"context"
	"database/sql"
	"time"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	paymenterrors "masar-finance/internal/payment/errors"
	"masar-finance/internal/shared/apperror"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payment_service.go -destination=mock/payment_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, organizationID, actorID string, req CreatePaymentRequest) (PaymentResponse, error)
	Delete(ctx context.Context, organizationID, actorID, id string) error
	GetByID(ctx context.Context, organizationID, id string) (PaymentResponse, error)
	GetAll(ctx context.Context, organizationID string) ([]PaymentResponse, error)
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
	l := zap.L().Named("payment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payment.service")
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
	req CreatePaymentRequest,
) (PaymentResponse, error) {
	orgUUID, err := tenant.ParseOrganizationID(organizationID)
	if err != nil {
		return PaymentResponse{}, err
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PaymentResponse{}, paymenterrors.ErrInvalidActorID
	}

	payment, err := buildPayment(orgUUID, actorUUID, req)
	if err != nil {
		return PaymentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	accounts := s.accounts.WithTx(tx)
	destination := payment.DestinationAccountID.String()

	if _, err := account.RequireActive(ctx, accounts, organizationID, destination); err != nil {
		s.logFailure(ctx, "create payment failed", err, zap.String("account_id", destination))
		return PaymentResponse{}, err
	}
	if err := accounts.Credit(ctx, organizationID, destination, payment.Amount); err != nil {
		s.logFailure(ctx, "credit destination account failed", err, zap.String("account_id", destination))
		return PaymentResponse{}, err
	}
	if err := qtx.Create(ctx, payment); err != nil {
		s.logFailure(ctx, "insert payment failed", err, zap.String("organization_id", organizationID))
		return PaymentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PaymentResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPaymentCreated, payment)
	s.logger.Info("payment created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("payment_id", payment.ID.String()),
	)
	return mapToResponse(*payment), nil
}

// Delete takes the payment back out of its destination account. It fails
// with insufficient funds when the money has already been spent.
func (s *service) Delete(
	ctx context.Context,
	organizationID, actorID, id string,
) error {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return err
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return paymenterrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	payment, err := qtx.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if err := s.accounts.WithTx(tx).Debit(ctx, organizationID, payment.DestinationAccountID.String(), payment.Amount); err != nil {
		s.logFailure(ctx, "reverse payment failed", err,
			zap.String("payment_id", id),
			zap.String("account_id", payment.DestinationAccountID.String()),
		)
		return err
	}
	if err := qtx.Delete(ctx, organizationID, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.emit(ctx, actorID, audit.ActionPaymentDeleted, payment)
	return nil
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (PaymentResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return PaymentResponse{}, err
	}

	payment, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return PaymentResponse{}, err
	}
	return mapToResponse(*payment), nil
}

func (s *service) GetAll(ctx context.Context, organizationID string) ([]PaymentResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	payments, err := s.repo.FindAllByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (s *service) emit(ctx context.Context, actorID, action string, payment *Payment) {
	var projectID *string
	if payment.ProjectID != nil {
		p := payment.ProjectID.String()
		projectID = &p
	}
	s.emitter.Emit(ctx, audit.Event{
		OrganizationID: payment.OrganizationID.String(),
		ProjectID:      projectID,
		ActorID:        actorID,
		Action:         action,
		EntityType:     "payment",
		EntityID:       payment.ID.String(),
		Metadata: map[string]any{
			"amount":                 money.FromMinor(payment.Amount).StringFixed(money.Scale),
			"destination_account_id": payment.DestinationAccountID.String(),
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

func buildPayment(orgUUID, actorUUID uuid.UUID, req CreatePaymentRequest) (*Payment, error) {
	amount, ok := money.PositiveMinor(req.Amount)
	if !ok {
		return nil, paymenterrors.ErrInvalidAmount
	}

	destination, err := uuid.Parse(req.DestinationAccountID)
	if err != nil {
		return nil, paymenterrors.ErrInvalidDestinationAccount
	}

	paymentDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != "" {
		d, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return nil, paymenterrors.ErrInvalidDateFormat
		}
		paymentDate = d
	}

	payment := &Payment{
		ID:                   uuid.New(),
		OrganizationID:       orgUUID,
		ClientName:           req.ClientName,
		Description:          req.Description,
		Amount:               amount,
		PaymentDate:          paymentDate,
		DestinationAccountID: destination,
		Status:               StatusCompleted,
		CreatedByID:          actorUUID,
	}

	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, paymenterrors.ErrInvalidProjectID
		}
		payment.ProjectID = &projectID
	}
	return payment, nil
}

func mapToResponse(p Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:                   p.ID.String(),
		OrganizationID:       p.OrganizationID.String(),
		ClientName:           p.ClientName,
		Description:          p.Description,
		Amount:               money.FromMinor(p.Amount),
		PaymentDate:          p.PaymentDate.Format("2006-01-02"),
		DestinationAccountID: p.DestinationAccountID.String(),
		Status:               string(p.Status),
		CreatedByID:          p.CreatedByID.String(),
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.ProjectID != nil {
		v := p.ProjectID.String()
		resp.ProjectID = &v
	}
	return resp
}

package expense

import (
	"context"
	"database/sql"
	"time"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	expenseerrors "masar-finance/internal/expense/errors"
	"masar-finance/internal/shared/apperror"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=expense_service.go -destination=mock/expense_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, organizationID, actorID string, req CreateExpenseRequest) (ExpenseResponse, error)
	Pay(ctx context.Context, organizationID, actorID, id string, req PayExpenseRequest) (ExpenseResponse, error)
	Cancel(ctx context.Context, organizationID, actorID, id string) (ExpenseResponse, error)
	Delete(ctx context.Context, organizationID, actorID, id string) error
	GetByID(ctx context.Context, organizationID, id string) (ExpenseResponse, error)
	GetAll(ctx context.Context, organizationID string, filter ExpenseFilter) ([]ExpenseResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	ledger  Ledger
	emitter audit.Emitter
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	accounts account.Repository,
	emitter audit.Emitter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("expense.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("expense.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		ledger:  NewLedger(repo, accounts),
		emitter: audit.OrDiscard(emitter),
		logger:  l,
	}
}

func (s *service) Create(
	ctx context.Context,
	organizationID, actorID string,
	req CreateExpenseRequest,
) (ExpenseResponse, error) {
	orgUUID, actorUUID, err := parseCaller(organizationID, actorID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := buildExpense(orgUUID, actorUUID, req)
	if err != nil {
		return ExpenseResponse{}, err
	}

	s.logger.Debug("create expense requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("organization_id", organizationID),
		zap.String("status", string(expense.Status)),
		zap.Int64("amount", expense.Amount),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	if err := s.ledger.WithTx(tx).Create(ctx, expense); err != nil {
		s.logFailure(ctx, "create expense failed", err, zap.String("organization_id", organizationID))
		return ExpenseResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit create expense failed", err, zap.String("organization_id", organizationID))
		return ExpenseResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionExpenseCreated, expense, map[string]any{
		"amount": money.FromMinor(expense.Amount).StringFixed(money.Scale),
		"status": expense.Status,
	})
	s.logger.Info("expense created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("expense_id", expense.ID.String()),
	)

	return mapToResponse(*expense), nil
}

func (s *service) Pay(
	ctx context.Context,
	organizationID, actorID, id string,
	req PayExpenseRequest,
) (ExpenseResponse, error) {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return ExpenseResponse{}, err
	}

	var amount *int64
	if req.Amount != nil {
		v, ok := money.PositiveMinor(*req.Amount)
		if !ok {
			return ExpenseResponse{}, expenseerrors.ErrInvalidAmount
		}
		amount = &v
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	expense, err := s.ledger.WithTx(tx).Pay(ctx, organizationID, id, req.SourceAccountID, amount)
	if err != nil {
		s.logFailure(ctx, "pay expense failed", err,
			zap.String("organization_id", organizationID),
			zap.String("expense_id", id),
		)
		return ExpenseResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit pay expense failed", err, zap.String("expense_id", id))
		return ExpenseResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionExpensePaid, expense, map[string]any{
		"paid_amount":       money.FromMinor(expense.PaidAmount).StringFixed(money.Scale),
		"source_account_id": req.SourceAccountID,
		"status":            expense.Status,
	})

	return mapToResponse(*expense), nil
}

func (s *service) Cancel(
	ctx context.Context,
	organizationID, actorID, id string,
) (ExpenseResponse, error) {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return ExpenseResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	// facility expenses are cancelled by their source (payroll run cancel)
	current, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, organizationID, id)
	if err == nil && current.SourceType != SourceManual {
		err = expenseerrors.ErrCancelFacilityExpense
	}
	if err != nil {
		s.logFailure(ctx, "cancel expense failed", err,
			zap.String("organization_id", organizationID),
			zap.String("expense_id", id),
		)
		return ExpenseResponse{}, err
	}

	expense, err := s.ledger.WithTx(tx).Cancel(ctx, organizationID, id)
	if err != nil {
		s.logFailure(ctx, "cancel expense failed", err,
			zap.String("organization_id", organizationID),
			zap.String("expense_id", id),
		)
		return ExpenseResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit cancel expense failed", err, zap.String("expense_id", id))
		return ExpenseResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionExpenseCancelled, expense, map[string]any{
		"restored_amount": money.FromMinor(expense.PaidAmount).StringFixed(money.Scale),
	})

	return mapToResponse(*expense), nil
}

func (s *service) Delete(
	ctx context.Context,
	organizationID, actorID, id string,
) error {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	expense, err := s.ledger.WithTx(tx).Delete(ctx, organizationID, id)
	if err != nil {
		s.logFailure(ctx, "delete expense failed", err,
			zap.String("organization_id", organizationID),
			zap.String("expense_id", id),
		)
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit delete expense failed", err, zap.String("expense_id", id))
		return err
	}

	restored := int64(0)
	if expense.Status != StatusCancelled {
		restored = expense.PaidAmount
	}
	s.emit(ctx, actorID, audit.ActionExpenseDeleted, expense, map[string]any{
		"restored_amount": money.FromMinor(restored).StringFixed(money.Scale),
	})
	return nil
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (ExpenseResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return ExpenseResponse{}, err
	}

	expense, err := s.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	return mapToResponse(*expense), nil
}

func (s *service) GetAll(ctx context.Context, organizationID string, filter ExpenseFilter) ([]ExpenseResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	query, err := parseFilter(filter)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.FindAllByOrganization(ctx, organizationID, query)
	if err != nil {
		s.logFailure(ctx, "list expenses failed", err, zap.String("organization_id", organizationID))
		return nil, err
	}

	resp := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) emit(ctx context.Context, actorID, action string, expense *Expense, metadata map[string]any) {
	var projectID *string
	if expense.ProjectID != nil {
		p := expense.ProjectID.String()
		projectID = &p
	}
	s.emitter.Emit(ctx, audit.Event{
		OrganizationID: expense.OrganizationID.String(),
		ProjectID:      projectID,
		ActorID:        actorID,
		Action:         action,
		EntityType:     "expense",
		EntityID:       expense.ID.String(),
		Metadata:       metadata,
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

func parseCaller(organizationID, actorID string) (uuid.UUID, uuid.UUID, error) {
	orgUUID, err := tenant.ParseOrganizationID(organizationID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, expenseerrors.ErrInvalidActorID
	}
	return orgUUID, actorUUID, nil
}

func buildExpense(orgUUID, actorUUID uuid.UUID, req CreateExpenseRequest) (*Expense, error) {
	amount, ok := money.PositiveMinor(req.Amount)
	if !ok {
		return nil, expenseerrors.ErrInvalidAmount
	}

	category := Category(req.Category)
	if _, ok := categories[category]; !ok {
		return nil, expenseerrors.ErrInvalidCategory
	}

	status := Status(req.Status)
	if status != StatusPending && status != StatusCompleted {
		return nil, expenseerrors.ErrInvalidCreateStatus
	}

	expenseDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.ExpenseDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return nil, expenseerrors.ErrInvalidDateFormat
		}
		expenseDate = d
	}

	expense := &Expense{
		ID:             uuid.New(),
		OrganizationID: orgUUID,
		Category:       category,
		Description:    req.Description,
		Amount:         amount,
		Status:         status,
		SourceType:     SourceManual,
		ExpenseDate:    expenseDate,
		CreatedByID:    actorUUID,
	}

	if req.ProjectID != nil && *req.ProjectID != "" {
		projectID, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, expenseerrors.ErrInvalidProjectID
		}
		expense.ProjectID = &projectID
	}
	if req.SourceAccountID != nil && *req.SourceAccountID != "" {
		sourceID, err := uuid.Parse(*req.SourceAccountID)
		if err != nil {
			return nil, apperror.InvalidField("source_account_id")
		}
		expense.SourceAccountID = &sourceID
	}

	return expense, nil
}

func parseFilter(filter ExpenseFilter) (QueryFilter, error) {
	var query QueryFilter
	if filter.Status != "" {
		status := Status(filter.Status)
		switch status {
		case StatusPending, StatusCompleted, StatusCancelled:
		default:
			return QueryFilter{}, expenseerrors.ErrInvalidStatusFilter
		}
		query.Status = &status
	}
	if filter.SourceType != "" {
		sourceType := SourceType(filter.SourceType)
		if sourceType != SourceManual && sourceType != SourceFacilityPayroll {
			return QueryFilter{}, apperror.InvalidField("source_type")
		}
		query.SourceType = &sourceType
	}
	if filter.ProjectID != "" {
		projectID, err := uuid.Parse(filter.ProjectID)
		if err != nil {
			return QueryFilter{}, expenseerrors.ErrInvalidProjectID
		}
		query.ProjectID = &projectID
	}
	return query, nil
}

func mapToResponse(e Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID.String(),
		OrganizationID:  e.OrganizationID.String(),
		Category:        string(e.Category),
		Description:     e.Description,
		Amount:          money.FromMinor(e.Amount),
		PaidAmount:      money.FromMinor(e.PaidAmount),
		RemainingAmount: money.FromMinor(e.Remaining()),
		Status:          string(e.Status),
		SourceType:      string(e.SourceType),
		ExpenseDate:     e.ExpenseDate.Format("2006-01-02"),
		CreatedByID:     e.CreatedByID.String(),
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.ProjectID != nil {
		v := e.ProjectID.String()
		resp.ProjectID = &v
	}
	if e.SourceAccountID != nil {
		v := e.SourceAccountID.String()
		resp.SourceAccountID = &v
	}
	if e.SourceID != nil {
		v := e.SourceID.String()
		resp.SourceID = &v
	}
	if e.CancelledAt != nil {
		v := e.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

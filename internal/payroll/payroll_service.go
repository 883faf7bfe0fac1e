package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"masar-finance/internal/audit"
	"masar-finance/internal/employee"
	"masar-finance/internal/expense"
	expenseerrors "masar-finance/internal/expense/errors"
	payrollerrors "masar-finance/internal/payroll/errors"
	"masar-finance/internal/shared/apperror"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/counter"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, organizationID, actorID string, req CreatePayrollRunRequest) (PayrollRunResponse, error)
	Populate(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error)
	Approve(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error)
	MarkAsPaid(ctx context.Context, organizationID, actorID, id string, req MarkPayrollRunPaidRequest) (PayrollRunResponse, error)
	Cancel(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error)
	GetByID(ctx context.Context, organizationID, id string) (PayrollRunResponse, error)
	GetAll(ctx context.Context, organizationID string, filter PayrollRunFilter) ([]PayrollRunResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	counters  counter.Repository
	ledger    expense.Ledger
	emitter   audit.Emitter
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	counters counter.Repository,
	ledger expense.Ledger,
	emitter audit.Emitter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		counters:  counters,
		ledger:    ledger,
		emitter:   audit.OrDiscard(emitter),
		logger:    l,
	}
}

func (s *service) Create(
	ctx context.Context,
	organizationID, actorID string,
	req CreatePayrollRunRequest,
) (PayrollRunResponse, error) {
	orgUUID, actorUUID, err := parseCaller(organizationID, actorID)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return PayrollRunResponse{}, payrollerrors.ErrInvalidPeriod
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	exists, err := repo.HasActiveRun(ctx, organizationID, req.Month, req.Year)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if exists {
		return PayrollRunResponse{}, apperror.WithDetail(
			payrollerrors.ErrPayrollRunExists, "period %02d/%d", req.Month, req.Year)
	}

	next, err := s.counters.WithTx(tx).GetNextValue(ctx, organizationID, counter.PayrollRunNumber)
	if err != nil {
		s.logFailure(ctx, "allocate payroll run number failed", err, zap.String("organization_id", organizationID))
		return PayrollRunResponse{}, err
	}

	run := &Run{
		ID:             uuid.New(),
		OrganizationID: orgUUID,
		RunNo:          fmt.Sprintf("PR-%06d", next),
		Month:          req.Month,
		Year:           req.Year,
		Status:         StatusDraft,
		Notes:          req.Notes,
		CreatedByID:    actorUUID,
	}
	if err := repo.Create(ctx, run); err != nil {
		s.logFailure(ctx, "create payroll run failed", err, zap.String("organization_id", organizationID))
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollRunResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPayrollRunCreated, run, map[string]any{
		"run_no": run.RunNo,
		"month":  run.Month,
		"year":   run.Year,
	})
	s.logger.Info("payroll run created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("payroll_run_id", run.ID.String()),
		zap.String("run_no", run.RunNo),
	)

	return mapToResponse(*run), nil
}

// Populate snapshots the active employees into the run. Existing items keep
// their ids, items of employees no longer active are removed, and the totals
// are recomputed by the database.
func (s *service) Populate(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error) {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return PayrollRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)

	run, err := repo.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if run.Status != StatusDraft {
		return PayrollRunResponse{}, apperror.WithDetail(
			payrollerrors.ErrInvalidStatusTransition, "cannot populate a %s payroll run", run.Status)
	}

	employees, err := s.employees.WithTx(tx).ListActive(ctx, organizationID)
	if err != nil {
		s.logFailure(ctx, "list active employees failed", err, zap.String("organization_id", organizationID))
		return PayrollRunResponse{}, err
	}

	now := time.Now().UTC()
	items := make([]RunItem, len(employees))
	keep := make([]uuid.UUID, len(employees))
	for i, e := range employees {
		items[i] = newItem(run, e, now)
		keep[i] = e.ID
	}

	if err := repo.UpsertItems(ctx, items); err != nil {
		s.logFailure(ctx, "upsert payroll items failed", err, zap.String("payroll_run_id", id))
		return PayrollRunResponse{}, err
	}
	removed, err := repo.DeleteItemsExcept(ctx, organizationID, id, keep)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	totals, err := repo.RecomputeTotals(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit populate payroll run failed", err, zap.String("payroll_run_id", id))
		return PayrollRunResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPayrollRunPopulated, run, map[string]any{
		"employee_count":   totals.EmployeeCount,
		"removed_items":    removed,
		"total_net_salary": money.FromMinor(totals.TotalNetSalary).StringFixed(money.Scale),
	})

	return s.GetByID(ctx, organizationID, id)
}

// Approve materializes one PENDING facility expense per item with a positive
// net salary. Either every expense is created or none is.
func (s *service) Approve(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error) {
	_, actorUUID, err := parseCaller(organizationID, actorID)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	run, err := repo.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if err := CheckTransition(run.Status, StatusApproved); err != nil {
		return PayrollRunResponse{}, err
	}

	items, err := repo.ListItems(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if len(items) == 0 {
		return PayrollRunResponse{}, payrollerrors.ErrPayrollRunEmpty
	}

	created := 0
	for _, item := range items {
		if item.FinanceExpenseID != nil || item.NetSalary <= 0 {
			continue
		}

		itemID := item.ID
		exp := &expense.Expense{
			ID:             uuid.New(),
			OrganizationID: run.OrganizationID,
			Category:       expense.CategorySalaries,
			Description:    fmt.Sprintf("Salary %s %02d/%d - %s", run.RunNo, run.Month, run.Year, item.EmployeeName),
			Amount:         item.NetSalary,
			Status:         expense.StatusPending,
			SourceType:     expense.SourceFacilityPayroll,
			SourceID:       &itemID,
			ExpenseDate:    periodEnd(run.Month, run.Year),
			CreatedByID:    actorUUID,
		}
		if err := ledger.Create(ctx, exp); err != nil {
			s.logFailure(ctx, "create payroll expense failed", err,
				zap.String("payroll_run_id", id),
				zap.String("employee_id", item.EmployeeID.String()),
			)
			return PayrollRunResponse{}, err
		}
		if err := repo.LinkExpense(ctx, organizationID, item.ID, exp.ID); err != nil {
			return PayrollRunResponse{}, err
		}
		created++
	}

	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedByID = &actorUUID
	run.ApprovedAt = &now
	if err := repo.Transition(ctx, run, StatusDraft); err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit approve payroll run failed", err, zap.String("payroll_run_id", id))
		return PayrollRunResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPayrollRunApproved, run, map[string]any{
		"expense_count":    created,
		"total_net_salary": money.FromMinor(run.TotalNetSalary).StringFixed(money.Scale),
	})
	s.logger.Info("payroll run approved",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("payroll_run_id", id),
		zap.Int("expense_count", created),
	)

	return s.GetByID(ctx, organizationID, id)
}

// MarkAsPaid settles every linked expense that is still open from one account.
// A shortfall on any item aborts the whole run.
func (s *service) MarkAsPaid(
	ctx context.Context,
	organizationID, actorID, id string,
	req MarkPayrollRunPaidRequest,
) (PayrollRunResponse, error) {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return PayrollRunResponse{}, err
	}
	sourceUUID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		return PayrollRunResponse{}, payrollerrors.ErrSourceAccountRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	run, err := repo.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	if err := CheckTransition(run.Status, StatusPaid); err != nil {
		return PayrollRunResponse{}, err
	}

	items, err := repo.ListItems(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	var paid int64
	for _, item := range items {
		if item.FinanceExpenseID == nil {
			continue
		}
		exp, err := ledger.Pay(ctx, organizationID, item.FinanceExpenseID.String(), req.SourceAccountID, nil)
		switch {
		case errors.Is(err, expenseerrors.ErrExpenseCancelled):
			err = apperror.WithDetail(payrollerrors.ErrPayrollExpenseCancelled,
				"expense %s of employee %s is cancelled", item.FinanceExpenseID.String(), item.EmployeeName)
			s.logFailure(ctx, "pay payroll expense failed", err,
				zap.String("payroll_run_id", id),
				zap.String("expense_id", item.FinanceExpenseID.String()),
			)
			return PayrollRunResponse{}, err
		case errors.Is(err, expenseerrors.ErrExpenseAlreadySettled):
			s.logger.Debug("payroll expense skipped",
				zap.String("payroll_run_id", id),
				zap.String("expense_id", item.FinanceExpenseID.String()),
				zap.Error(err),
			)
			continue
		case err != nil:
			s.logFailure(ctx, "pay payroll expense failed", err,
				zap.String("payroll_run_id", id),
				zap.String("expense_id", item.FinanceExpenseID.String()),
			)
			return PayrollRunResponse{}, err
		}
		paid += exp.Amount
	}

	now := time.Now().UTC()
	run.Status = StatusPaid
	run.PaidAt = &now
	run.PaidFromAccountID = &sourceUUID
	if err := repo.Transition(ctx, run, StatusApproved); err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit mark payroll run paid failed", err, zap.String("payroll_run_id", id))
		return PayrollRunResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPayrollRunPaid, run, map[string]any{
		"source_account_id": req.SourceAccountID,
		"paid_amount":       money.FromMinor(paid).StringFixed(money.Scale),
	})

	return s.GetByID(ctx, organizationID, id)
}

// Cancel moves the run to CANCELLED and cancels every linked expense through
// the ledger, which restores any settled amount to its source account.
func (s *service) Cancel(ctx context.Context, organizationID, actorID, id string) (PayrollRunResponse, error) {
	if _, _, err := parseCaller(organizationID, actorID); err != nil {
		return PayrollRunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	repo := s.repo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	run, err := repo.FindByIDForUpdate(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	from := run.Status
	if err := CheckTransition(from, StatusCancelled); err != nil {
		return PayrollRunResponse{}, err
	}

	items, err := repo.ListItems(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}

	var cancelled int
	var restored int64
	for _, item := range items {
		if item.FinanceExpenseID == nil {
			continue
		}
		exp, err := ledger.Cancel(ctx, organizationID, item.FinanceExpenseID.String())
		if errors.Is(err, expenseerrors.ErrExpenseAlreadyCancelled) {
			continue
		}
		if err != nil {
			s.logFailure(ctx, "cancel payroll expense failed", err,
				zap.String("payroll_run_id", id),
				zap.String("expense_id", item.FinanceExpenseID.String()),
			)
			return PayrollRunResponse{}, err
		}
		cancelled++
		restored += exp.PaidAmount
	}

	now := time.Now().UTC()
	run.Status = StatusCancelled
	run.CancelledAt = &now
	if err := repo.Transition(ctx, run, from); err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logFailure(ctx, "commit cancel payroll run failed", err, zap.String("payroll_run_id", id))
		return PayrollRunResponse{}, err
	}

	s.emit(ctx, actorID, audit.ActionPayrollRunCancelled, run, map[string]any{
		"previous_status":    from,
		"cancelled_expenses": cancelled,
		"restored_amount":    money.FromMinor(restored).StringFixed(money.Scale),
	})

	return s.GetByID(ctx, organizationID, id)
}

func (s *service) GetByID(ctx context.Context, organizationID, id string) (PayrollRunResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return PayrollRunResponse{}, err
	}

	run, err := s.repo.FindByIDWithItems(ctx, organizationID, id)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	return mapToResponse(*run), nil
}

func (s *service) GetAll(ctx context.Context, organizationID string, filter PayrollRunFilter) ([]PayrollRunResponse, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	query := QueryFilter{Year: filter.Year}
	if filter.Status != "" {
		status := Status(filter.Status)
		switch status {
		case StatusDraft, StatusApproved, StatusPaid, StatusCancelled:
		default:
			return nil, payrollerrors.ErrInvalidStatusFilter
		}
		query.Status = &status
	}

	runs, err := s.repo.FindAllByOrganization(ctx, organizationID, query)
	if err != nil {
		s.logFailure(ctx, "list payroll runs failed", err, zap.String("organization_id", organizationID))
		return nil, err
	}

	resp := make([]PayrollRunResponse, len(runs))
	for i, r := range runs {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) emit(ctx context.Context, actorID, action string, run *Run, metadata map[string]any) {
	metadata["run_no"] = run.RunNo
	metadata["status"] = run.Status
	s.emitter.Emit(ctx, audit.Event{
		OrganizationID: run.OrganizationID.String(),
		ActorID:        actorID,
		Action:         action,
		EntityType:     "payroll_run",
		EntityID:       run.ID.String(),
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
		return uuid.Nil, uuid.Nil, payrollerrors.ErrInvalidActorID
	}
	return orgUUID, actorUUID, nil
}

func newItem(run *Run, e employee.Employee, now time.Time) RunItem {
	return RunItem{
		ID:                 uuid.New(),
		PayrollRunID:       run.ID,
		OrganizationID:     run.OrganizationID,
		EmployeeID:         e.ID,
		EmployeeNo:         e.EmployeeNo,
		EmployeeName:       e.FullName,
		BaseSalary:         e.BaseSalary,
		HousingAllowance:   e.HousingAllowance,
		TransportAllowance: e.TransportAllowance,
		OtherAllowances:    e.OtherAllowances,
		GosiDeduction:      e.GosiDeduction,
		NetSalary:          e.NetSalary(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// periodEnd is the last day of the payroll month.
func periodEnd(month, year int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

func mapToResponse(r Run) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:                r.ID.String(),
		OrganizationID:    r.OrganizationID.String(),
		RunNo:             r.RunNo,
		Month:             r.Month,
		Year:              r.Year,
		Status:            string(r.Status),
		Notes:             r.Notes,
		TotalBaseSalary:   money.FromMinor(r.TotalBaseSalary),
		TotalAllowances:   money.FromMinor(r.TotalAllowances),
		TotalDeductions:   money.FromMinor(r.TotalDeductions),
		TotalNetSalary:    money.FromMinor(r.TotalNetSalary),
		EmployeeCount:     r.EmployeeCount,
		CreatedByID:       r.CreatedByID.String(),
		ApprovedByID:      uuidString(r.ApprovedByID),
		ApprovedAt:        timeString(r.ApprovedAt),
		PaidAt:            timeString(r.PaidAt),
		PaidFromAccountID: uuidString(r.PaidFromAccountID),
		CancelledAt:       timeString(r.CancelledAt),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}

	if len(r.Items) > 0 {
		resp.Items = make([]PayrollRunItemResponse, len(r.Items))
		for i, it := range r.Items {
			resp.Items[i] = PayrollRunItemResponse{
				ID:                 it.ID.String(),
				EmployeeID:         it.EmployeeID.String(),
				EmployeeNo:         it.EmployeeNo,
				EmployeeName:       it.EmployeeName,
				BaseSalary:         money.FromMinor(it.BaseSalary),
				HousingAllowance:   money.FromMinor(it.HousingAllowance),
				TransportAllowance: money.FromMinor(it.TransportAllowance),
				OtherAllowances:    money.FromMinor(it.OtherAllowances),
				GosiDeduction:      money.FromMinor(it.GosiDeduction),
				NetSalary:          money.FromMinor(it.NetSalary),
				FinanceExpenseID:   uuidString(it.FinanceExpenseID),
			}
		}
	}
	return resp
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

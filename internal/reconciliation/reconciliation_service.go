package reconciliation

import (
	"context"
	"database/sql"
	"time"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	"masar-finance/internal/shared/contextutil"
	"masar-finance/internal/shared/money"
	"masar-finance/internal/tenant"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SystemActor is the actor recorded on audit events raised by the sweep.
const SystemActor = "system:reconciliation"

//go:generate mockgen -source=reconciliation_service.go -destination=mock/reconciliation_service_mock.go -package=mock
type Service interface {
	Reconcile(ctx context.Context, organizationID, accountID string) (Report, error)
	ReconcileOrganization(ctx context.Context, organizationID string) ([]Report, error)
	Sweep(ctx context.Context) ([]Report, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	accounts account.Repository
	emitter  audit.Emitter
	logger   *zap.Logger
	group    singleflight.Group
}

func NewService(
	db *sql.DB,
	repo Repository,
	accounts account.Repository,
	emitter audit.Emitter,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("reconciliation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("reconciliation.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		accounts: accounts,
		emitter:  audit.OrDiscard(emitter),
		logger:   l,
	}
}

// Reconcile never writes. Concurrent calls for the same account share one
// database read; a caller that gives up returns its own ctx error while the
// read keeps running for the others.
func (s *service) Reconcile(ctx context.Context, organizationID, accountID string) (Report, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return Report{}, err
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(organizationID+":"+accountID, func() (any, error) {
		return s.reconcile(shared, organizationID, accountID)
	})

	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

func (s *service) ReconcileOrganization(ctx context.Context, organizationID string) ([]Report, error) {
	if _, err := tenant.ParseOrganizationID(organizationID); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.FindAllByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(accounts))
	for _, a := range accounts {
		report, err := s.Reconcile(ctx, organizationID, a.ID.String())
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Sweep reconciles every active account of every organization and returns
// the drifted ones. Each drift raises an audit event.
func (s *service) Sweep(ctx context.Context) ([]Report, error) {
	accounts, err := s.accounts.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var drifted []Report
	for _, a := range accounts {
		if ctx.Err() != nil {
			return drifted, ctx.Err()
		}

		report, err := s.Reconcile(ctx, a.OrganizationID.String(), a.ID.String())
		if err != nil {
			s.logger.Error("reconcile account failed",
				zap.String("organization_id", a.OrganizationID.String()),
				zap.String("account_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if report.IsBalanced {
			continue
		}

		drifted = append(drifted, report)
		s.logger.Warn("balance drift detected",
			zap.String("organization_id", report.OrganizationID),
			zap.String("account_id", report.AccountID),
			zap.String("stored", report.StoredBalance.StringFixed(money.Scale)),
			zap.String("computed", report.ComputedBalance.StringFixed(money.Scale)),
		)
		s.emitter.Emit(ctx, audit.Event{
			OrganizationID: report.OrganizationID,
			ActorID:        SystemActor,
			Action:         audit.ActionReconciliationDrift,
			EntityType:     "account",
			EntityID:       report.AccountID,
			Metadata: map[string]any{
				"stored_balance":   report.StoredBalance.StringFixed(money.Scale),
				"computed_balance": report.ComputedBalance.StringFixed(money.Scale),
				"delta":            report.Delta.StringFixed(money.Scale),
			},
		})
	}

	s.logger.Info("reconciliation sweep finished",
		zap.Int("accounts", len(accounts)),
		zap.Int("drifted", len(drifted)),
	)
	return drifted, nil
}

func (s *service) reconcile(ctx context.Context, organizationID, accountID string) (Report, error) {
	// one snapshot for the stored balance and every sum
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return Report{}, err
	}
	defer tx.Rollback()

	a, err := s.accounts.WithTx(tx).FindByID(ctx, organizationID, accountID)
	if err != nil {
		return Report{}, err
	}

	totals, err := s.repo.WithTx(tx).Totals(ctx, organizationID, accountID)
	if err != nil {
		s.logger.Error("sum account history failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return Report{}, err
	}

	if err := tx.Commit(); err != nil {
		return Report{}, err
	}

	computed := a.OpeningBalance + totals.PaymentsIn + totals.TransfersIn - totals.ExpensesOut - totals.TransfersOut

	return Report{
		AccountID:       a.ID.String(),
		OrganizationID:  a.OrganizationID.String(),
		AccountName:     a.Name,
		Currency:        a.Currency,
		StoredBalance:   money.FromMinor(a.Balance),
		ComputedBalance: money.FromMinor(computed),
		Delta:           money.FromMinor(a.Balance - computed),
		IsBalanced:      a.Balance == computed,
		Breakdown: Breakdown{
			OpeningBalance: money.FromMinor(a.OpeningBalance),
			PaymentsIn:     money.FromMinor(totals.PaymentsIn),
			TransfersIn:    money.FromMinor(totals.TransfersIn),
			ExpensesOut:    money.FromMinor(totals.ExpensesOut),
			TransfersOut:   money.FromMinor(totals.TransfersOut),
		},
		CheckedAt: time.Now().UTC(),
	}, nil
}

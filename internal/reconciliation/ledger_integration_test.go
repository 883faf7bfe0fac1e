//go:build integration

package reconciliation_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"masar-finance/internal/account"
	"masar-finance/internal/account/accounttest"
	"masar-finance/internal/expense"
	"masar-finance/internal/migration"
	"masar-finance/internal/payment"
	"masar-finance/internal/reconciliation"
	"masar-finance/internal/transfer"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openPostgres(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db, sqlDB
}

func TestLedger_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	db, sqlDB := openPostgres(t)

	accounts := account.NewRepository(db)
	expenses := expense.NewService(sqlDB, expense.NewRepository(db), accounts, nil)
	transfers := transfer.NewService(sqlDB, transfer.NewRepository(db), accounts, nil)
	payments := payment.NewService(sqlDB, payment.NewRepository(db), accounts, nil)
	recon := reconciliation.NewService(sqlDB, reconciliation.NewRepository(db), accounts, nil)

	org := uuid.New()
	actor := uuid.NewString()
	bank := accounttest.Seed(t, db, org, 100000, true)
	site := accounttest.Seed(t, db, org, 0, true)

	// 40 debits of 50.00 against 1000.00 of funds split across two paths:
	// at most 20 may succeed in total.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = expenses.Create(ctx, org.String(), actor, expense.CreateExpenseRequest{
					Category: "MATERIALS", Amount: decimal.NewFromInt(50), Status: "COMPLETED",
					SourceAccountID: ptr(bank.ID.String()),
				})
			} else {
				_, err = transfers.Create(ctx, org.String(), actor, transfer.CreateTransferRequest{
					Amount: decimal.NewFromInt(50), FromAccountID: bank.ID.String(), ToAccountID: site.ID.String(),
				})
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, succeeded)
	assert.Equal(t, int64(0), accounttest.Balance(t, db, bank))

	_, err := payments.Create(ctx, org.String(), actor, payment.CreatePaymentRequest{
		Amount: decimal.NewFromInt(10), DestinationAccountID: bank.ID.String(),
	})
	require.NoError(t, err)

	reports, err := recon.ReconcileOrganization(ctx, org.String())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Truef(t, r.IsBalanced, "account %s drifted by %s", r.AccountID, r.Delta)
	}
}

func TestLedger_BalanceCheckConstraint(t *testing.T) {
	db, _ := openPostgres(t)
	acc := accounttest.Seed(t, db, uuid.New(), 100, true)

	err := db.Exec("UPDATE accounts SET balance = -1 WHERE id = ?", acc.ID).Error
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23514", pgErr.Code)
}

func TestPayrollRuns_OneActiveRunPerMonth(t *testing.T) {
	db, _ := openPostgres(t)
	org := uuid.New()

	insert := func(no, status string) error {
		return db.Exec(`INSERT INTO payroll_runs (id, organization_id, run_no, month, year, status, created_by_id)
			VALUES (?, ?, ?, 3, 2026, ?, ?)`, uuid.New(), org, no, status, uuid.New()).Error
	}

	require.NoError(t, insert("PR-000001", "CANCELLED"))
	require.NoError(t, insert("PR-000002", "DRAFT"))

	err := insert("PR-000003", "APPROVED")
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
	assert.Equal(t, "uq_payroll_runs_org_month", pgErr.ConstraintName)
}

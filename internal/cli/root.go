// Package cli holds the ledgerctl commands.
package cli

import (
	"context"
	"errors"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	"masar-finance/internal/config"
	"masar-finance/internal/migration"
	"masar-finance/internal/reconciliation"
	"masar-finance/internal/shared/connection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrDriftDetected is returned by reconcile when any account is out of
// balance. main maps it to exit code 2.
var ErrDriftDetected = errors.New("balance drift detected")

// Migrator is the part of *migration.Migrator the CLI drives.
type Migrator interface {
	Up() error
	Down(n int) error
	Version() (uint, bool, error)
	Close() error
}

// Reconciler is the part of reconciliation.Service the CLI drives.
type Reconciler interface {
	Reconcile(ctx context.Context, organizationID, accountID string) (reconciliation.Report, error)
	ReconcileOrganization(ctx context.Context, organizationID string) ([]reconciliation.Report, error)
}

// Deps opens what a command needs. The returned func releases it.
type Deps struct {
	OpenMigrator   func() (Migrator, func(), error)
	OpenReconciler func() (Reconciler, func(), error)
	JWTSecret      string
}

func NewRootCommand(deps Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the finance ledger database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newMigrateCommand(deps.OpenMigrator))
	rootCmd.AddCommand(newReconcileCommand(deps.OpenReconciler))
	rootCmd.AddCommand(newTokenCommand(deps.JWTSecret))

	return rootCmd
}

// DefaultDeps connects to the database described by cfg.
func DefaultDeps(cfg *config.Config) Deps {
	return Deps{
		OpenMigrator: func() (Migrator, func(), error) {
			gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.DB.MaxRetries)
			if err != nil {
				return nil, nil, err
			}
			sqlDB, err := gormDB.DB()
			if err != nil {
				return nil, nil, err
			}
			m, err := migration.New(sqlDB, zap.L())
			if err != nil {
				_ = sqlDB.Close()
				return nil, nil, err
			}
			return m, func() {
				_ = m.Close()
				_ = sqlDB.Close()
			}, nil
		},
		OpenReconciler: func() (Reconciler, func(), error) {
			gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.DB.MaxRetries)
			if err != nil {
				return nil, nil, err
			}
			sqlDB, err := gormDB.DB()
			if err != nil {
				return nil, nil, err
			}
			svc := reconciliation.NewService(
				sqlDB,
				reconciliation.NewRepository(gormDB),
				account.NewRepository(gormDB),
				audit.NewLogEmitter(zap.L()),
				zap.L(),
			)
			return svc, func() { _ = sqlDB.Close() }, nil
		},
		JWTSecret: cfg.Auth.JWTSecret,
	}
}

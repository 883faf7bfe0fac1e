package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	"masar-finance/internal/config"
	"masar-finance/internal/messaging/kafka"
	"masar-finance/internal/messaging/kafka/producer"
	"masar-finance/internal/reconciliation"
	"masar-finance/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker publishes the audit outbox and sweeps reconciliation on a timer.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.DB.MaxRetries)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DB.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	emitter := audit.Tee(audit.NewLogEmitter(logger), audit.NewOutboxEmitter(outboxRepo, logger))
	reconciliationService := reconciliation.NewService(
		sqlDB,
		reconciliation.NewRepository(gormDB),
		account.NewRepository(gormDB),
		emitter,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.Worker.OutboxPollInterval,
	)
	go runReconciliationSweep(ctx, reconciliationService, cfg.Worker.ReconcileInterval, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runReconciliationSweep(ctx context.Context, service reconciliation.Service, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("reconciliation sweep disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("reconciliation sweep started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reports, err := service.Sweep(ctx)
			if err != nil {
				logger.Error("reconciliation sweep failed", zap.Error(err))
				continue
			}
			drifted := 0
			for _, r := range reports {
				if !r.IsBalanced {
					drifted++
				}
			}
			logger.Info("reconciliation sweep finished",
				zap.Int("accounts", len(reports)),
				zap.Int("drifted", drifted),
			)
		}
	}
}

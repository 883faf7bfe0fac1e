package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"masar-finance/internal/config"
	"masar-finance/internal/employee"
	"masar-finance/internal/messaging/kafka/consumer"
	"masar-finance/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer keeps the employee compensation snapshot in sync with HR.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	employeeService := employee.NewService(employee.NewRepository(gormDB), logger)

	reader := consumer.NewEmployeeCompensationReader(cfg.Kafka.Broker, cfg.Kafka.GroupID)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeEmployeeCompensation(ctx, reader, employeeService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}

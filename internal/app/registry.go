package app

import (
	"database/sql"

	"masar-finance/internal/account"
	"masar-finance/internal/audit"
	"masar-finance/internal/config"
	"masar-finance/internal/employee"
	"masar-finance/internal/expense"
	"masar-finance/internal/messaging/kafka"
	"masar-finance/internal/middleware"
	"masar-finance/internal/payment"
	"masar-finance/internal/payroll"
	"masar-finance/internal/rbac"
	"masar-finance/internal/rbac/infra"
	"masar-finance/internal/reconciliation"
	"masar-finance/internal/shared/counter"
	"masar-finance/internal/transfer"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	accountRepo := account.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	expenseRepo := expense.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	paymentRepo := payment.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	reconciliationRepo := reconciliation.NewRepository(gormDB)
	transferRepo := transfer.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBAC.ModelPath, cfg.RBAC.PolicyPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)

	// --- Audit ---
	emitter := audit.Tee(
		audit.NewLogEmitter(logger),
		audit.NewOutboxEmitter(outboxRepo, logger),
	)

	// --- Services ---
	accountService := account.NewService(accountRepo, logger)
	employeeService := employee.NewService(employeeRepo, logger)
	expenseService := expense.NewService(db, expenseRepo, accountRepo, emitter, logger)
	paymentService := payment.NewService(db, paymentRepo, accountRepo, emitter, logger)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		employeeRepo,
		counterRepo,
		expense.NewLedger(expenseRepo, accountRepo),
		emitter,
		logger,
	)
	reconciliationService := reconciliation.NewService(db, reconciliationRepo, accountRepo, emitter, logger)
	transferService := transfer.NewService(db, transferRepo, accountRepo, emitter, logger)

	// --- Handlers ---
	accountHandler := account.NewHandler(accountService)
	employeeHandler := employee.NewHandler(employeeService, logger)
	expenseHandler := expense.NewHandler(expenseService, logger)
	paymentHandler := payment.NewHandler(paymentService)
	payrollHandler := payroll.NewHandler(payrollService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	reconciliationHandler := reconciliation.NewHandler(reconciliationService)
	transferHandler := transfer.NewHandler(transferService, logger)

	guard := middleware.Guard{
		RBAC:      rbacService,
		Redis:     rdb,
		RateLimit: middleware.RateLimitByUser(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret), middleware.ContextLogger(logger))
	{
		account.RegisterRoutes(api, accountHandler, guard)
		employee.RegisterRoutes(api, employeeHandler, guard)
		expense.RegisterRoutes(api, expenseHandler, guard)
		payment.RegisterRoutes(api, paymentHandler, guard)
		payroll.RegisterRoutes(api, payrollHandler, guard)
		reconciliation.RegisterRoutes(api, reconciliationHandler, guard)
		transfer.RegisterRoutes(api, transferHandler, guard)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}

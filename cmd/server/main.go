package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/service"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/workflow"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/config"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/infrastructure/notify"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/infrastructure/persistence/repository"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/infrastructure/worker"
	httpadapter "github.com/salahatech/KFSH-Ordering-sub009/internal/interfaces/http"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/report"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/utils"
)

// systemUserID marks audit entries written by background jobs rather than
// a person.
const systemUserID = 0

func main() {
	// Load .env into the environment before viper reads it. A missing file
	// is fine in deployed environments.
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting radiopharmaceutical ordering service",
		zap.String("site", cfg.Reports.SiteName),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	workflowRepo := repository.NewWorkflowRepository(db, logger)
	requestRepo := repository.NewRequestRepository(db, logger)
	actionRepo := repository.NewActionRepository(db, logger)
	entityRepo := repository.NewEntityRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)

	notifier := notify.NewInAppNotifier(db, logger)

	// Initialize approval workflow engine
	appLogger := &zapLoggerAdapter{logger: logger}
	engine := workflow.NewEngine(
		workflowRepo,
		requestRepo,
		actionRepo,
		userRepo,
		notifier,
		db,
		appLogger,
	)

	// Initialize application services
	statusService := service.NewStatusService(entityRepo, auditRepo, engine, db, appLogger)
	planningService := service.NewPlanningService(service.PlanningParams{
		Stages: service.StageDurations{
			DispatchLead: cfg.Planning.DispatchLeadMinutes,
			Packaging:    cfg.Planning.PackagingMinutes,
			QC:           cfg.Planning.QCMinutes,
			Synthesis:    cfg.Planning.SynthesisMinutes,
		},
		OveragePercent:   cfg.Planning.OveragePercent,
		ShelfLifeMinutes: cfg.Planning.ShelfLifeMinutes,
	}, appLogger)

	exporter := report.NewScheduleExporter(cfg.Reports.OutputDir, cfg.Reports.SiteName, logger)

	// Background workers
	batchRepo := repository.NewBatchRepository(db, logger)
	workers := worker.NewManager(logger)
	workers.Register(worker.NewExpiryPoller(
		batchRepo,
		statusService,
		time.Minute,
		cfg.Planning.ShelfLifeMinutes,
		systemUserID,
		logger,
	))

	// Initialize HTTP server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, statusService, planningService, engine, exporter, appLogger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}
	defer workers.StopAll()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces of
// the application and HTTP layers.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, toZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, toZapFields(keysAndValues...)...)
}

func toZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/config"
	"investor-desk/request-portal-backend/internal/reports"
	"investor-desk/request-portal-backend/internal/reports/scheduler"
)

// ReportWorker runs the configured report schedules
type ReportWorker struct {
	manager *scheduler.ScheduleManager
	logger  *zap.Logger
	config  ReportWorkerConfig
}

// ReportWorkerConfig configuration for the report worker
type ReportWorkerConfig struct {
	OutputDir        string
	ExecutionTimeout time.Duration
	StopTimeout      time.Duration
	Schedules        []scheduler.Schedule
	Archive          scheduler.S3ArchiveConfig
}

// DefaultReportWorkerConfig returns default configuration
func DefaultReportWorkerConfig() ReportWorkerConfig {
	return ReportWorkerConfig{
		OutputDir:        scheduler.DefaultExecutorConfig().OutputDir,
		ExecutionTimeout: scheduler.DefaultExecutorConfig().Timeout,
		StopTimeout:      time.Minute,
	}
}

// NewReportWorker creates a new report worker
func NewReportWorker(ctx context.Context, db *sqlx.DB, logger *zap.Logger, config ReportWorkerConfig) (*ReportWorker, error) {
	service := reports.NewService(reports.NewRepository(db), logger)
	executor := scheduler.NewExecutor(service, scheduler.ExecutorConfig{
		OutputDir: config.OutputDir,
		Timeout:   config.ExecutionTimeout,
	}, logger)

	if config.Archive.Enabled() {
		archiver, err := scheduler.NewS3Archiver(ctx, config.Archive)
		if err != nil {
			return nil, err
		}
		executor.WithArchiver(archiver)
		logger.Info("Archiving reports to S3",
			zap.String("bucket", config.Archive.Bucket),
			zap.String("prefix", config.Archive.Prefix))
	}

	manager := scheduler.NewScheduleManager(executor, logger)
	for _, schedule := range config.Schedules {
		if err := manager.AddSchedule(schedule); err != nil {
			return nil, err
		}
	}

	return &ReportWorker{manager: manager, logger: logger, config: config}, nil
}

// Start runs schedules until ctx is cancelled
func (w *ReportWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting report worker",
		zap.String("output_dir", w.config.OutputDir),
		zap.Int("schedules", w.manager.GetActiveJobs()))

	if err := w.manager.Start(); err != nil {
		return err
	}
	for _, schedule := range w.config.Schedules {
		if status, err := w.manager.GetJobStatus(schedule.Name); err == nil {
			w.logger.Info("Schedule registered",
				zap.String("schedule_name", schedule.Name),
				zap.Time("next_run", status.NextRun))
		}
	}

	<-ctx.Done()
	w.logger.Info("Report worker shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), w.config.StopTimeout)
	defer cancel()
	w.manager.Stop(stopCtx)
	return nil
}

// RunOnce executes one schedule immediately and returns
func (w *ReportWorker) RunOnce(ctx context.Context, name string) error {
	result, err := w.manager.RunNow(ctx, name)
	if err != nil {
		return err
	}
	w.logger.Info("Report written",
		zap.String("schedule_name", name),
		zap.String("file", result.FilePath),
		zap.Int("record_count", result.RecordCount))
	return nil
}

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	runOnce := flag.String("run-once", "", "run the named schedule immediately and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database")

	// Create worker
	workerConfig := DefaultReportWorkerConfig()
	workerConfig.OutputDir = cfg.Reports.OutputDir
	workerConfig.Schedules = cfg.Reports.Schedules
	workerConfig.Archive = cfg.Reports.Archive

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	worker, err := NewReportWorker(ctx, db, logger, workerConfig)
	if err != nil {
		logger.Fatal("Failed to create report worker", zap.Error(err))
	}

	if *runOnce != "" {
		if err := worker.RunOnce(ctx, *runOnce); err != nil {
			logger.Fatal("Report run failed", zap.String("schedule_name", *runOnce), zap.Error(err))
		}
		return
	}

	if len(workerConfig.Schedules) == 0 {
		logger.Warn("No report schedules configured; worker will idle until stopped")
	}
	if err := worker.Start(ctx); err != nil {
		logger.Error("Worker error", zap.Error(err))
	}

	logger.Info("Report worker stopped")
}

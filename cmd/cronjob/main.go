package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rentlink-backend/internal/config"
	"rentlink-backend/internal/jobs"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/scheduler"
	"rentlink-backend/internal/storage"
)

// ErrMemoryStorage is returned when the cronjob is pointed at in-process
// storage. That store belongs to the server process and is always empty here.
var ErrMemoryStorage = errors.New("cronjob requires postgres storage; memory storage is private to the server process")

var errUnknownJob = errors.New("unknown job name")

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'report-overdue-rentals', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentLink Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *runOnce); err != nil {
		logger.Error("Cronjob exited with error", "error", err)
		if errors.Is(err, errUnknownJob) {
			fmt.Printf("Available jobs:\n")
			fmt.Printf("  - report-overdue-rentals\n")
			fmt.Printf("  - report-stale-pending-requests\n")
			fmt.Printf("  - all-nightly\n")
		}
		stop()
		os.Exit(1)
	}
}

// run executes one job when runOnce is set, otherwise schedules all jobs
// until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, runOnce string) error {
	if cfg.Storage.Type == config.StorageMemory {
		return ErrMemoryStorage
	}

	// Initialize Storage
	backend, err := storage.Open(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(backend.Repositories(), cfg)

	// Check if running a single job
	if runOnce != "" {
		logger.Info("Running job once", "job", runOnce)
		if err := runJobOnce(jobRunner, runOnce); err != nil {
			return err
		}
		logger.Info("Job execution completed", "job", runOnce)
		return nil
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
	return nil
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	switch jobName {
	case "report-overdue-rentals":
		jobRunner.ReportOverdueRentals()
	case "report-stale-pending-requests":
		jobRunner.ReportStalePendingRequests()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		return fmt.Errorf("%w: %q", errUnknownJob, jobName)
	}
	return nil
}

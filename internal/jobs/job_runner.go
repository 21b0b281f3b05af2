package jobs

import (
	"time"

	"rentlink-backend/internal/config"
	"rentlink-backend/internal/logger"
	"rentlink-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs. Jobs only report; they never
// transition requests or rentals.
type JobRunner struct {
	repos  repository.Repositories
	config *config.Config
	now    func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos repository.Repositories, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:  repos,
		config: cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (jr *JobRunner) Config() *config.Config { return jr.config }

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ReportOverdueRentals()
	jr.ReportStalePendingRequests()
}

package jobs

import (
	"crfms-backend/internal/clock"
	"crfms-backend/internal/config"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentalRepo      repository.RentalRepository
	reservationRepo repository.ReservationRepository
	publisher       events.Publisher
	clock           clock.Clock
	config          *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	rentalRepo repository.RentalRepository,
	reservationRepo repository.ReservationRepository,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		rentalRepo:      rentalRepo,
		reservationRepo: reservationRepo,
		publisher:       publisher,
		clock:           clk,
		config:          cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

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
	jr.DetectOverdueRentals()
}

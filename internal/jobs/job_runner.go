package jobs

import (
	"time"

	"packbooker-backend/internal/config"
	"packbooker-backend/internal/logger"
	"packbooker-backend/internal/repository"
	"packbooker-backend/internal/security"
	"packbooker-backend/internal/service"
)

// Summary reports the outcome of one job run.
type Summary struct {
	Sent   int `json:"sent"`
	Errors int `json:"errors"`
	Total  int `json:"total"`
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reservations repository.ReservationRepository
	emailSvc     service.EmailService
	tokens       security.TokenIssuer
	config       *config.Config
	now          func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(reservations repository.ReservationRepository, emailSvc service.EmailService, tokens security.TokenIssuer, cfg *config.Config) *JobRunner {
	return &JobRunner{
		reservations: reservations,
		emailSvc:     emailSvc,
		tokens:       tokens,
		config:       cfg,
		now:          time.Now,
	}
}

// Config exposes the runner's configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. A panic
// counts as a failed run so HTTP triggers report it instead of a clean
// zero summary.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() Summary) (summary Summary) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			summary.Errors++
		}
	}()

	logger.Info("Starting job", "job", jobName)
	summary = jobFunc()
	logger.Info("Job completed", "job", jobName,
		"sent", summary.Sent, "errors", summary.Errors, "total", summary.Total)
	return summary
}

// RunAllHourlyJobs runs every recurring job once (for manual execution)
func (jr *JobRunner) RunAllHourlyJobs() {
	jr.SendPaymentReminders()
	jr.SendBalanceReminders()
	jr.CompleteElapsedReservations()
}

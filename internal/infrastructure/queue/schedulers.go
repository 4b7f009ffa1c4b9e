package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	loanModel "library-backend/internal/domains/loan/model"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

// Scheduler owns the periodic jobs enqueued for the worker.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
	}
}

// RegisterJobs wires all cron entries.
func (s *Scheduler) RegisterJobs() error {
	return s.registerExpireOverdueLoansJob()
}

// Overdue loans lapse hourly. An empty AsOf means "evaluate at run time",
// so a late delivery still expires everything due by then.
func (s *Scheduler) registerExpireOverdueLoansJob() error {
	payload, err := json.Marshal(loanModel.ExpireOverdueLoansPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeExpireOverdueLoans, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // hourly
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register ExpireOverdueLoans job", err)
		return err
	}

	logger.Info("Registered ExpireOverdueLoans: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

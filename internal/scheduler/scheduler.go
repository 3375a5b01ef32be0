// Package scheduler wires up the cron job that triggers the daily pipeline.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"careeragent/internal/pipeline"
)

// Job is the work run on every tick.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron and runs one Job once a day.
type Scheduler struct {
	cron *cron.Cron
	job  Job
	log  *zap.Logger
	spec string // cron spec, e.g. "0 8 * * *"
}

// New creates a Scheduler that fires daily at hour:minute local time.
func New(hour, minute int, job Job, log *zap.Logger) *Scheduler {
	log = log.Named("scheduler")
	stdLog := zap.NewStdLog(log)
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.PrintfLogger(stdLog))),
		job:  job,
		log:  log,
		spec: Spec(hour, minute),
	}
}

// Spec returns the five-field cron expression for a daily run.
func Spec(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// Start registers the job and starts the cron loop. ctx is handed to
// every run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	s.log.Info("scheduled run started")
	err := s.job(ctx)
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		s.log.Warn("previous run still in progress, skipping")
	case err != nil:
		s.log.Error("scheduled run failed", zap.Error(err))
	default:
		s.log.Info("scheduled run complete")
	}
}

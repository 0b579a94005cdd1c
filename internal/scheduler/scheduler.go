// Package scheduler runs the nightly batch re-analysis across all users.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jkoskela/fitsight/internal/analysis"
	"github.com/jkoskela/fitsight/internal/errors"
	"github.com/jkoskela/fitsight/internal/insight"
)

// Scheduler owns the cron instance and the nightly analysis job.
type Scheduler struct {
	cron    *cron.Cron
	service *insight.Service
	logger  *slog.Logger
}

// New creates a scheduler around the analysis service.
func New(service *insight.Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		logger:  logger,
	}
}

// Register adds the nightly job with the given cron expression, for example
// "15 3 * * *" for 03:15 every night.
func (s *Scheduler) Register(ctx context.Context, nightlyCron string) error {
	if _, err := s.cron.AddFunc(nightlyCron, func() { s.RunNightly(ctx) }); err != nil {
		return fmt.Errorf("register nightly analysis: %w", err)
	}
	return nil
}

// Start starts the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("scheduler stopped")
}

// RunNightly analyzes every user and logs summary counts. Failures are
// logged, never propagated: the next night retries from scratch.
func (s *Scheduler) RunNightly(ctx context.Context) {
	start := time.Now()
	reports, err := s.service.ReportAll(ctx, start)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "nightly analysis failed", errors.SlogError(err))
		return
	}

	var plateaued, highRisk int
	for _, report := range reports {
		if report.PlateauDetected {
			plateaued++
		}
		if report.Risk.Level == analysis.RiskHigh {
			highRisk++
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "nightly analysis complete",
		slog.Int("users", len(reports)),
		slog.Int("plateaued", plateaued),
		slog.Int("highRisk", highRisk),
		slog.Duration("duration", time.Since(start)))
}

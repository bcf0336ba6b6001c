// Package scheduler runs the weekly settlement after the Monday check-in
// window closes.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/slimcircle/slimcircle/internal/config"
	prommetrics "github.com/slimcircle/slimcircle/internal/metrics"
	"github.com/slimcircle/slimcircle/internal/service/settlement"
	"github.com/slimcircle/slimcircle/pkg/logger"
)

// Settler triggers a settlement run. Week number zero means the week
// containing the current time.
type Settler interface {
	Settle(ctx context.Context, weekNumber int, force bool) (*settlement.Result, error)
}

// CacheInvalidator drops read-side caches after a week settles.
type CacheInvalidator interface {
	InvalidateWeek(ctx context.Context, weekNumber int)
}

// Service owns the cron lifecycle for the scheduled settlement job.
type Service struct {
	config      *config.Config
	settler     Settler
	invalidator CacheInvalidator
	log         *logger.Logger
	cron        *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	settler Settler,
	invalidator CacheInvalidator,
	log *logger.Logger,
) *Service {
	return &Service{
		config:      cfg,
		settler:     settler,
		invalidator: invalidator,
		log:         log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runSettlement(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register settlement job: %w", err)
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("time", s.config.Scheduler.Time).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression turns the configured "HH:MM" into a Monday-only cron
// expression, matching the day the check-in window closes.
func (s *Service) buildCronExpression() (string, error) {
	parts := strings.Split(s.config.Scheduler.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Scheduler.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// "minute hour day month weekday", Monday only
	return fmt.Sprintf("%d %d * * 1", minute, hour), nil
}

// runSettlement executes the scheduled settlement job. Failures are logged
// and recorded; the scheduler keeps running for the following week.
func (s *Service) runSettlement(ctx context.Context) {
	start := time.Now()
	defer prommetrics.SetSchedulerLastRun()

	s.log.Info().Msg("Running scheduled settlement")

	result, err := s.settler.Settle(ctx, 0, true)
	if err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Scheduled settlement failed")
		prommetrics.RecordSettlementRun("scheduled", "error")
		return
	}

	if !result.Success {
		s.log.Info().
			Int("week", result.WeekNumber).
			Str("reason", result.Message).
			Msg("Scheduled settlement had nothing to rank")
		prommetrics.RecordSettlementRun("scheduled", "empty")
		return
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateWeek(ctx, result.WeekNumber)
	}

	s.log.Info().
		Int("week", result.WeekNumber).
		Int("ranked", result.Count).
		Dur("duration", time.Since(start)).
		Msg("Scheduled settlement complete")
	prommetrics.RecordSettlementRun("scheduled", "success")
}

// Package scheduler runs the periodic achievement recomputation.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/beautypk/photo-arena/internal/config"
	"github.com/beautypk/photo-arena/internal/metrics"
	"github.com/beautypk/photo-arena/internal/service/achievements"
	"github.com/beautypk/photo-arena/pkg/logger"
)

// Service schedules background achievement evaluation.
type Service struct {
	cfg                config.SchedulerConfig
	achievementService *achievements.Service
	log                *logger.Logger
	cron               *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg config.SchedulerConfig, achievementService *achievements.Service, log *logger.Logger) *Service {
	return &Service{
		cfg:                cfg,
		achievementService: achievementService,
		log:                log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}
	if s.cfg.AchievementEvaluationTime == "" {
		s.log.Info().Msg("No achievement evaluation schedule configured")
		return nil
	}

	location, err := s.cfg.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	_, err = s.cron.AddFunc(s.cfg.AchievementEvaluationTime, func() {
		s.runEvaluation(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register achievement evaluation job: %w", err)
	}

	s.cron.Start()
	s.log.Info().
		Str("schedule", s.cfg.AchievementEvaluationTime).
		Str("timezone", s.cfg.Timezone).
		Msg("Achievement evaluation job registered")
	return nil
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// runEvaluation executes one full evaluation pass.
func (s *Service) runEvaluation(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Starting scheduled achievement evaluation")

	awarded, err := s.achievementService.EvaluateAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Scheduled achievement evaluation failed")
		return
	}

	metrics.SchedulerLastRunTimestamp.Set(float64(time.Now().Unix()))
	s.log.Info().
		Int("awarded", awarded).
		Dur("duration", time.Since(start)).
		Msg("Scheduled achievement evaluation completed")
}

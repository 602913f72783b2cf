package processor

import (
	"context"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/pkg/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StatsRefresher пересчёт статистики по тональности
type StatsRefresher interface {
	Refresh(ctx context.Context) (map[entity.Sentiment]int64, error)
}

type CronScheduler struct {
	cron  *cron.Cron
	stats StatsRefresher
	log   zerolog.Logger
}

func NewCronScheduler(stats StatsRefresher) *CronScheduler {
	log := logger.Component("cron")

	return &CronScheduler{
		cron:  cron.New(cron.WithLogger(cron.PrintfLogger(&log))),
		stats: stats,
		log:   log,
	}
}

// Start регистрирует задачу и сразу выполняет первый пересчёт
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	s.log.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Msg("Cron scheduler started")

	s.refresh(ctx)
	return nil
}

func (s *CronScheduler) refresh(ctx context.Context) {
	counts, err := s.stats.Refresh(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to refresh sentiment statistics")
		return
	}
	s.log.Debug().Int("sentiments", len(counts)).Msg("Sentiment statistics updated")
}

func (s *CronScheduler) Stop() {
	s.log.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

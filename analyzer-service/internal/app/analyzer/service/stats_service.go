package service

import (
	"context"
	"fmt"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/repository"
	"foodreview/pkg/logger"
	"foodreview/pkg/metrics"
)

// StatsService пересчитывает распределение отзывов по тональности
type StatsService struct {
	reviewRepo repository.ReviewRepository
}

func NewStatsService(reviewRepo repository.ReviewRepository) *StatsService {
	return &StatsService{reviewRepo: reviewRepo}
}

// Refresh обновляет gauge reviews_by_sentiment
func (s *StatsService) Refresh(ctx context.Context) (map[entity.Sentiment]int64, error) {
	counts, err := s.reviewRepo.CountBySentiment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by sentiment: %w", err)
	}

	var total int64
	for _, sentiment := range entity.AllSentiments() {
		n := counts[sentiment]
		metrics.SetReviewsBySentiment(string(sentiment), n)
		total += n
	}

	logger.Debug().
		Int64("total", total).
		Int64("positive", counts[entity.SentimentPositive]).
		Int64("negative", counts[entity.SentimentNegative]).
		Int64("neutral", counts[entity.SentimentNeutral]).
		Msg("Sentiment statistics refreshed")

	return counts, nil
}

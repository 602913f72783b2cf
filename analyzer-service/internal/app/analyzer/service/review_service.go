package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
	"foodreview/analyzer-service/internal/app/analyzer/repository"
	"foodreview/pkg/logger"
	"foodreview/pkg/metrics"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrEmptyReview = errors.New("review text is empty")
)

// ReviewService обрабатывает бизнес-логику отзывов
// Координирует работу конвейера анализа, репозитория, кеша и Kafka
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	analyzer      Analyzer
	cache         infrastructure.ReviewCache
	kafkaProducer infrastructure.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	analyzer Analyzer,
	cache infrastructure.ReviewCache,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	if cache == nil {
		cache = infrastructure.NoopCache{}
	}
	if kafkaProducer == nil {
		kafkaProducer = infrastructure.NoopPublisher{}
	}
	return &ReviewService{
		reviewRepo:    reviewRepo,
		analyzer:      analyzer,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// AnalyzeReview анализирует и сохраняет отзыв
// 1. Полный анализ (тональность и ключевые пункты)
// 2. Сохранение в хранилище
// 3. Сброс кеша списка и событие REVIEW_ANALYZED в Kafka
func (s *ReviewService) AnalyzeReview(ctx context.Context, text string) (*entity.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReview
	}

	// Запись создаётся только после завершения анализа
	analysis := s.analyzer.Analyze(ctx, text)

	review := &entity.Review{
		ReviewText: text,
		Sentiment:  analysis.Sentiment,
		Confidence: analysis.Confidence,
		KeyPoints:  analysis.KeyPoints,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	metrics.RecordReviewAnalyzed(string(review.Sentiment))

	if err := s.cache.InvalidateReviews(ctx); err != nil {
		// Кеш устареет по TTL
		logger.Warn().Err(err).Int64("review_id", review.ID).Msg("Failed to invalidate reviews cache")
	}

	event := entity.ReviewEvent{
		EventType:  entity.EventReviewAnalyzed,
		ReviewID:   review.ID,
		Sentiment:  review.Sentiment,
		Confidence: review.Confidence,
		Timestamp:  time.Now().UTC(),
	}

	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже сохранён, проблемы с Kafka не критичны
		logger.Warn().Err(err).Int64("review_id", review.ID).Msg("Failed to publish review analyzed event")
	}

	return review, nil
}

// ListReviews возвращает все отзывы, новые первыми
func (s *ReviewService) ListReviews(ctx context.Context) ([]entity.Review, error) {
	// Поколение читается до похода в хранилище: если между чтением и записью
	// кеш сбросят, снимок в кеш не попадёт
	reviews, generation, hit, err := s.cache.GetReviews(ctx)
	cacheable := err == nil
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read reviews cache")
	}
	if hit {
		return reviews, nil
	}

	reviews, err = s.reviewRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	if reviews == nil {
		reviews = make([]entity.Review, 0)
	}

	if cacheable {
		if err := s.cache.SetReviews(ctx, generation, reviews); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache reviews")
		}
	}

	return reviews, nil
}

func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(event.ReviewID, 10), data)
}

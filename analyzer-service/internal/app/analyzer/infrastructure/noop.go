package infrastructure

import (
	"context"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

// NoopPublisher используется, когда брокеры Kafka не настроены
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// NoopCache используется, когда Redis не настроен: всегда промах
type NoopCache struct{}

func (NoopCache) GetReviews(ctx context.Context) ([]entity.Review, int64, bool, error) {
	return nil, 0, false, nil
}

func (NoopCache) SetReviews(ctx context.Context, generation int64, reviews []entity.Review) error {
	return nil
}

func (NoopCache) InvalidateReviews(ctx context.Context) error {
	return nil
}

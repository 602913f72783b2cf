package mocks

import (
	"context"

	"foodreview/analyzer-service/internal/app/analyzer/entity"

	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) CountBySentiment(ctx context.Context) (map[entity.Sentiment]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.Sentiment]int64), args.Error(1)
}

func (m *MockReviewRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockReviewCache мок для кеша списка отзывов
type MockReviewCache struct {
	mock.Mock
}

func (m *MockReviewCache) GetReviews(ctx context.Context) ([]entity.Review, int64, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2), args.Error(3)
	}
	return args.Get(0).([]entity.Review), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockReviewCache) SetReviews(ctx context.Context, generation int64, reviews []entity.Review) error {
	args := m.Called(ctx, generation, reviews)
	return args.Error(0)
}

func (m *MockReviewCache) InvalidateReviews(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

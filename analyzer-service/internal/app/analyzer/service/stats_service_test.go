package service

import (
	"context"
	"errors"
	"testing"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/repository/mocks"
	"foodreview/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRefresh_SetsGauge(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	ctx := context.Background()

	reviewRepo.On("CountBySentiment", ctx).Return(map[entity.Sentiment]int64{
		entity.SentimentPositive: 5,
		entity.SentimentNegative: 2,
	}, nil)

	counts, err := NewStatsService(reviewRepo).Refresh(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(5), counts[entity.SentimentPositive])
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.ReviewsBySentiment.WithLabelValues("positive")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ReviewsBySentiment.WithLabelValues("negative")))
	// отсутствующая тональность обнуляется
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ReviewsBySentiment.WithLabelValues("neutral")))
}

func TestStatsRefresh_RepoError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	ctx := context.Background()

	reviewRepo.On("CountBySentiment", ctx).Return(nil, errors.New("db error"))

	_, err := NewStatsService(reviewRepo).Refresh(ctx)
	assert.Error(t, err)
}

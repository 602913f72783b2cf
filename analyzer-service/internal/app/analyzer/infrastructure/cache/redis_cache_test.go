package cache

import (
	"context"
	"testing"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RedisCacheTestSuite тестовый suite для кеша списка отзывов
type RedisCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client, err = NewRedisClient(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)

	s.cache = NewRedisCache(s.client, 5*time.Minute)
}

func (s *RedisCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisCacheTestSuite) TestGetReviews_Miss() {
	ctx := context.Background()

	// Act
	reviews, generation, hit, err := s.cache.GetReviews(ctx)

	// Assert
	s.NoError(err)
	s.False(hit)
	s.Nil(reviews)
	s.Equal(int64(0), generation)
}

func (s *RedisCacheTestSuite) TestSetAndGetReviews() {
	ctx := context.Background()

	// Arrange
	createdAt := time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)
	reviews := []entity.Review{
		{ID: 2, ReviewText: "Harga mahal", Sentiment: entity.SentimentNegative, Confidence: "fallback", KeyPoints: "- Harga mahal", CreatedAt: createdAt},
		{ID: 1, ReviewText: "Enak", Sentiment: entity.SentimentPositive, Confidence: "97.00%", KeyPoints: "- Enak", CreatedAt: createdAt.Add(-time.Hour)},
	}
	s.NoError(s.cache.SetReviews(ctx, 0, reviews))

	// Act
	cached, _, hit, err := s.cache.GetReviews(ctx)

	// Assert
	s.NoError(err)
	s.True(hit)
	s.Equal(reviews, cached)
	s.True(s.miniRedis.Exists(reviewsCacheKey))
	s.Equal(5*time.Minute, s.miniRedis.TTL(reviewsCacheKey))
}

func (s *RedisCacheTestSuite) TestSetReviews_EmptyListIsHit() {
	ctx := context.Background()

	s.NoError(s.cache.SetReviews(ctx, 0, []entity.Review{}))

	cached, _, hit, err := s.cache.GetReviews(ctx)
	s.NoError(err)
	s.True(hit)
	s.NotNil(cached)
	s.Empty(cached)
}

func (s *RedisCacheTestSuite) TestInvalidateReviews() {
	ctx := context.Background()

	// Arrange
	s.NoError(s.cache.SetReviews(ctx, 0, []entity.Review{{ID: 1, ReviewText: "x"}}))

	// Act
	err := s.cache.InvalidateReviews(ctx)

	// Assert
	s.NoError(err)
	s.False(s.miniRedis.Exists(reviewsCacheKey))
	_, generation, hit, _ := s.cache.GetReviews(ctx)
	s.False(hit)
	s.Equal(int64(1), generation)
}

func (s *RedisCacheTestSuite) TestGetReviews_Expired() {
	ctx := context.Background()

	s.NoError(s.cache.SetReviews(ctx, 0, []entity.Review{{ID: 1}}))
	s.miniRedis.FastForward(6 * time.Minute)

	_, _, hit, err := s.cache.GetReviews(ctx)
	s.NoError(err)
	s.False(hit)
}

func (s *RedisCacheTestSuite) TestGetReviews_CorruptedPayload() {
	ctx := context.Background()

	s.NoError(s.miniRedis.Set(reviewsCacheKey, "{not json"))

	_, _, hit, err := s.cache.GetReviews(ctx)
	s.Error(err)
	s.False(hit)
}

func (s *RedisCacheTestSuite) TestSetReviews_StaleGenerationDropped() {
	ctx := context.Background()

	// Arrange - снимок взят до сброса кеша
	_, generation, hit, err := s.cache.GetReviews(ctx)
	s.Require().NoError(err)
	s.False(hit)
	s.Require().NoError(s.cache.InvalidateReviews(ctx))

	// Act
	err = s.cache.SetReviews(ctx, generation, []entity.Review{{ID: 1, ReviewText: "old"}})

	// Assert
	s.NoError(err)
	s.False(s.miniRedis.Exists(reviewsCacheKey))
}

func (s *RedisCacheTestSuite) TestSetReviews_CurrentGenerationAfterInvalidate() {
	ctx := context.Background()

	s.Require().NoError(s.cache.InvalidateReviews(ctx))
	s.Require().NoError(s.cache.InvalidateReviews(ctx))

	_, generation, _, err := s.cache.GetReviews(ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), generation)

	s.NoError(s.cache.SetReviews(ctx, generation, []entity.Review{{ID: 3, ReviewText: "new"}}))

	cached, _, hit, err := s.cache.GetReviews(ctx)
	s.NoError(err)
	s.True(hit)
	s.Require().Len(cached, 1)
	s.Equal("new", cached[0].ReviewText)
}

func (s *RedisCacheTestSuite) TestGetReviews_CorruptedGeneration() {
	ctx := context.Background()

	s.NoError(s.miniRedis.Set(generationKey, "abc"))

	_, _, hit, err := s.cache.GetReviews(ctx)
	s.Error(err)
	s.False(hit)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(addr, "", 0)
	require.Error(t, err)
}

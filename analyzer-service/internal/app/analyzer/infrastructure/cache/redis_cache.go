package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	reviewsCacheKey = "reviews:all"
	generationKey   = "reviews:gen"
	serviceName     = "analyzer-service"
)

var errStaleGeneration = errors.New("reviews cache generation changed")

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetReviews читает список и поколение одной командой MGET
func (r *RedisCache) GetReviews(ctx context.Context) ([]entity.Review, int64, bool, error) {
	values, err := r.client.MGet(ctx, generationKey, reviewsCacheKey).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, 0, false, fmt.Errorf("failed to get reviews from cache: %w", err)
	}

	generation, err := parseGeneration(values[0])
	if err != nil {
		return nil, 0, false, err
	}

	data, ok := values[1].(string)
	if !ok {
		metrics.RecordCacheMiss(serviceName, "reviews")
		return nil, generation, false, nil
	}

	reviews := make([]entity.Review, 0)
	if err := json.Unmarshal([]byte(data), &reviews); err != nil {
		return nil, generation, false, fmt.Errorf("failed to unmarshal reviews: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "reviews")
	return reviews, generation, true, nil
}

// SetReviews пишет список, только если поколение не сдвинулось после чтения.
// Устаревший снимок молча отбрасывается.
func (r *RedisCache) SetReviews(ctx context.Context, generation int64, reviews []entity.Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, reviewsCacheKey, data, r.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set reviews in cache: %w", err)
	}
}

// InvalidateReviews сдвигает поколение и удаляет список в одной транзакции
func (r *RedisCache) InvalidateReviews(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, reviewsCacheKey)
		return nil
	})
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate reviews cache: %w", err)
	}
	return nil
}

func parseGeneration(value interface{}) (int64, error) {
	raw, ok := value.(string)
	if !ok {
		return 0, nil
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache generation %q: %w", raw, err)
	}
	return generation, nil
}

// Ping используется проверкой готовности
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

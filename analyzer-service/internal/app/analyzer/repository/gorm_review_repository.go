package repository

import (
	"context"
	"fmt"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/pkg/metrics"

	"gorm.io/gorm"
)

const serviceName = "analyzer-service"

type gormReviewRepository struct {
	db *gorm.DB // PostgreSQL или встроенная SQLite
}

// NewGormReviewRepository создает репозиторий отзывов поверх PostgreSQL или SQLite
func NewGormReviewRepository(db *gorm.DB) ReviewRepository {
	return &gormReviewRepository{db: db}
}

// Migrate создает таблицу reviews, если её нет
func (r *gormReviewRepository) Migrate(ctx context.Context) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpMigrate, "reviews")
	err := r.db.WithContext(ctx).AutoMigrate(&entity.Review{})
	timer.ObserveDuration(err)
	if err != nil {
		return fmt.Errorf("failed to migrate reviews: %w", err)
	}
	return nil
}

// Create сохраняет отзыв, id и created_at назначаются здесь
func (r *gormReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.ID = 0
	review.CreatedAt = time.Now().UTC()

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	err := r.db.WithContext(ctx).Create(review).Error
	timer.ObserveDuration(err)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetAll возвращает все отзывы, новые первыми
func (r *gormReviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	reviews := make([]entity.Review, 0)

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	timer.ObserveDuration(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	for i := range reviews {
		reviews[i].CreatedAt = reviews[i].CreatedAt.UTC()
	}
	return reviews, nil
}

func (r *gormReviewRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Review{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return total, nil
}

// CountBySentiment группирует отзывы по тональности
func (r *gormReviewRepository) CountBySentiment(ctx context.Context) (map[entity.Sentiment]int64, error) {
	var rows []struct {
		Sentiment string
		Total     int64
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("sentiment, count(*) AS total").
		Group("sentiment").
		Scan(&rows).Error
	timer.ObserveDuration(err)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by sentiment: %w", err)
	}

	counts := make(map[entity.Sentiment]int64, len(rows))
	for _, row := range rows {
		counts[entity.Sentiment(row.Sentiment)] = row.Total
	}
	return counts, nil
}

func (r *gormReviewRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

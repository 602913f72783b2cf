package repository

import (
	"context"
	"errors"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrInvalidDatabaseURL = errors.New("invalid database url")
)

// ReviewRepository определяет методы для работы с отзывами.
// Записи только добавляются: обновления и удаления не предусмотрены.
type ReviewRepository interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, review *entity.Review) error
	GetAll(ctx context.Context) ([]entity.Review, error)
	Count(ctx context.Context) (int64, error)
	CountBySentiment(ctx context.Context) (map[entity.Sentiment]int64, error)
	Ping(ctx context.Context) error
}

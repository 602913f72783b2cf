package infrastructure

import (
	"context"
	"errors"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

// ErrAdapterUnavailable - внешняя модель не настроена или не прошла инициализацию
var ErrAdapterUnavailable = errors.New("adapter unavailable")

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ReviewCache кеш упорядоченного списка отзывов.
// hit=false без ошибки означает промах. GetReviews отдаёт поколение кеша,
// SetReviews записывает список только если поколение с тех пор не менялось,
// InvalidateReviews сдвигает поколение.
type ReviewCache interface {
	GetReviews(ctx context.Context) (reviews []entity.Review, generation int64, hit bool, err error)
	SetReviews(ctx context.Context, generation int64, reviews []entity.Review) error
	InvalidateReviews(ctx context.Context) error
}

// SentimentModel локальный классификатор тональности
type SentimentModel interface {
	Classify(ctx context.Context, text string) (entity.ModelLabel, error)
}

// SummaryModel локальная модель суммаризации
type SummaryModel interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// TextGenerator удалённая генеративная модель
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

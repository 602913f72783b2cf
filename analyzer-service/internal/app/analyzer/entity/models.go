package entity

import (
	"time"
)

// Sentiment - итоговая тональность отзыва
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ConfidenceFallback - отметка, что тональность получена эвристикой по ключевым словам
const ConfidenceFallback = "fallback"

// AllSentiments перечисляет все допустимые значения тональности
func AllSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// Valid проверяет, что значение входит в перечисление
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Review - единственная сохраняемая сущность.
// Создаётся один раз после полного анализа, не обновляется и не удаляется.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement" bson:"_id"`
	ReviewText string    `json:"review_text" gorm:"type:text;not null" bson:"review_text"`
	Sentiment  Sentiment `json:"sentiment" gorm:"type:varchar(20);not null;index" bson:"sentiment"`
	Confidence string    `json:"confidence" gorm:"type:varchar(20)" bson:"confidence"`                   // "98.76%" или "fallback"
	KeyPoints  string    `json:"key_points" gorm:"type:text" bson:"key_points"`                          // строки "- ..." через \n
	CreatedAt  time.Time `json:"created_at" gorm:"not null;index:idx_reviews_created_at" bson:"created_at"` // UTC, выставляется репозиторием
}

// TableName указывает имя таблицы для GORM
func (Review) TableName() string {
	return "reviews"
}

// Analysis - результат работы конвейера анализа, живёт только в памяти
type Analysis struct {
	Sentiment  Sentiment
	Confidence string
	KeyPoints  string
}

// ModelLabel - ответ локального классификатора тональности
type ModelLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ReviewEvent - событие для Kafka после сохранения отзыва
type ReviewEvent struct {
	EventType  string    `json:"event_type"` // REVIEW_ANALYZED
	ReviewID   int64     `json:"review_id"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence string    `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

const EventReviewAnalyzed = "REVIEW_ANALYZED"

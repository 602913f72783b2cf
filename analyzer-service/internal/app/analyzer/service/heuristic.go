package service

import (
	"strings"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

// Словари индикаторов (индонезийский и английский)
var (
	positiveIndicators = []string{"baik", "enak", "lezat", "mantap", "bagus", "recommended", "rekomendasi", "love", "liked", "penuh", "worth"}
	negativeIndicators = []string{"tidak", "buruk", "sepi", "kecewa", "asin", "pahit", "lambat", "mahal", "murah", "kurang"}
)

// ClassifyHeuristic определяет тональность подсчётом слов-индикаторов.
// Каждое слово учитывается один раз, если встречается как подстрока.
// Ничья, включая 0:0, даёт neutral.
func ClassifyHeuristic(text string) (entity.Sentiment, string) {
	lower := strings.ToLower(text)

	pos := countIndicators(lower, positiveIndicators)
	neg := countIndicators(lower, negativeIndicators)

	switch {
	case pos > neg:
		return entity.SentimentPositive, entity.ConfidenceFallback
	case neg > pos:
		return entity.SentimentNegative, entity.ConfidenceFallback
	default:
		return entity.SentimentNeutral, entity.ConfidenceFallback
	}
}

func countIndicators(text string, indicators []string) int {
	n := 0
	for _, word := range indicators {
		if strings.Contains(text, word) {
			n++
		}
	}
	return n
}

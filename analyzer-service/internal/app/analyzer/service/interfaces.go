package service

import (
	"context"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

type ReviewServiceInterface interface {
	AnalyzeReview(ctx context.Context, text string) (*entity.Review, error)
	ListReviews(ctx context.Context) ([]entity.Review, error)
}

// Analyzer конвейер анализа, не возвращает ошибок
type Analyzer interface {
	Analyze(ctx context.Context, text string) entity.Analysis
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
	"foodreview/pkg/logger"
	"foodreview/pkg/metrics"
)

const (
	stageSentiment = "sentiment"
	stageKeyPoints = "key_points"

	tierHeuristic  = "heuristic"
	tierNaiveSplit = "naive_split"
)

// Граница предложения: знак конца предложения и пробелы после него
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SentimentClassifier источник тональности с возможной ошибкой
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (entity.Sentiment, string, error)
}

// KeyPointsExtractor адаптер, извлекающий ключевые пункты
type KeyPointsExtractor interface {
	KeyPoints(ctx context.Context, text string, maxPoints int) (string, error)
}

// KeyPointStrategy один уровень цепочки извлечения пунктов.
// ok=false означает переход к следующему уровню.
type KeyPointStrategy interface {
	Name() string
	Attempt(ctx context.Context, text string) (string, bool)
}

// Pipeline анализ отзыва с откатом по уровням.
// Ошибки адаптеров наружу не выходят.
type Pipeline struct {
	classifier SentimentClassifier
	strategies []KeyPointStrategy
}

// NewPipeline classifier может быть nil, тогда сразу используется эвристика
func NewPipeline(classifier SentimentClassifier, strategies ...KeyPointStrategy) *Pipeline {
	return &Pipeline{classifier: classifier, strategies: strategies}
}

// Analyze всегда возвращает результат
func (p *Pipeline) Analyze(ctx context.Context, text string) entity.Analysis {
	sentiment, confidence := p.AnalyzeSentiment(ctx, text)
	return entity.Analysis{
		Sentiment:  sentiment,
		Confidence: confidence,
		KeyPoints:  p.ExtractKeyPoints(ctx, text),
	}
}

// AnalyzeSentiment локальный классификатор, затем эвристика
func (p *Pipeline) AnalyzeSentiment(ctx context.Context, text string) (entity.Sentiment, string) {
	if p.classifier != nil {
		sentiment, confidence, err := p.classifier.Classify(ctx, text)
		if err == nil && sentiment.Valid() {
			metrics.RecordAnalysisTier(stageSentiment, AdapterLocalClassifier)
			return sentiment, confidence
		}
		recordTierFailure(AdapterLocalClassifier, err)
	}

	metrics.RecordAnalysisTier(stageSentiment, tierHeuristic)
	return ClassifyHeuristic(text)
}

// ExtractKeyPoints первый успешный уровень побеждает
func (p *Pipeline) ExtractKeyPoints(ctx context.Context, text string) string {
	for _, strategy := range p.strategies {
		if points, ok := strategy.Attempt(ctx, text); ok {
			metrics.RecordAnalysisTier(stageKeyPoints, strategy.Name())
			return points
		}
	}
	return ""
}

func recordTierFailure(adapter string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, infrastructure.ErrAdapterUnavailable) {
		metrics.RecordAdapterFailure(adapter, "unavailable")
		return
	}
	metrics.RecordAdapterFailure(adapter, "error")
	logger.Warn().Err(err).Str("adapter", adapter).Msg("Adapter failed, falling back")
}

// extractorStrategy превращает адаптер в уровень цепочки
type extractorStrategy struct {
	name      string
	extractor KeyPointsExtractor
	maxPoints int
}

func (s *extractorStrategy) Name() string {
	return s.name
}

func (s *extractorStrategy) Attempt(ctx context.Context, text string) (string, bool) {
	points, err := s.extractor.KeyPoints(ctx, text, s.maxPoints)
	if err != nil {
		recordTierFailure(s.name, err)
		return "", false
	}
	return points, true
}

func NewGenerativeStrategy(adapter KeyPointsExtractor, maxPoints int) KeyPointStrategy {
	return &extractorStrategy{name: AdapterGenerative, extractor: adapter, maxPoints: maxPoints}
}

func NewSummarizerStrategy(adapter KeyPointsExtractor, maxPoints int) KeyPointStrategy {
	return &extractorStrategy{name: AdapterLocalSummarizer, extractor: adapter, maxPoints: maxPoints}
}

// naiveSplitStrategy последний уровень, срабатывает всегда
type naiveSplitStrategy struct {
	maxPoints int
}

func NewNaiveSplitStrategy(maxPoints int) KeyPointStrategy {
	return &naiveSplitStrategy{maxPoints: maxPoints}
}

func (s *naiveSplitStrategy) Name() string {
	return tierNaiveSplit
}

func (s *naiveSplitStrategy) Attempt(_ context.Context, text string) (string, bool) {
	return NaiveKeyPoints(text, s.maxPoints), true
}

// NaiveKeyPoints делит текст на предложения, пунктуация остаётся в предложении.
// Текст без знаков конца предложения становится одним пунктом.
func NaiveKeyPoints(text string, maxPoints int) string {
	return bulletize(SplitSentences(text), maxPoints)
}

// SplitSentences режет обрезанный текст после [.!?], за которыми идут пробелы
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// loc[0] указывает на знак препинания, он остаётся в предложении
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	sentences = append(sentences, text[start:])
	return sentences
}

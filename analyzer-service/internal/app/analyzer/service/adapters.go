package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
)

// Имена адаптеров в реестре
const (
	AdapterLocalClassifier = "local_classifier"
	AdapterLocalSummarizer = "local_summarizer"
	AdapterGenerative      = "generative"
)

// Классификатор принимает не больше 512 символов
const classifierMaxInput = 512

var ErrEmptyGeneration = errors.New("empty key points from model")

type (
	ClassifierInit func(ctx context.Context) (infrastructure.SentimentModel, error)
	SummarizerInit func(ctx context.Context) (infrastructure.SummaryModel, error)
	GeneratorInit  func(ctx context.Context) (infrastructure.TextGenerator, error)
)

// LocalClassifierAdapter локальная модель тональности
type LocalClassifierAdapter struct {
	registry *AdapterRegistry
	init     ClassifierInit
}

func NewLocalClassifierAdapter(registry *AdapterRegistry, init ClassifierInit) *LocalClassifierAdapter {
	return &LocalClassifierAdapter{registry: registry, init: init}
}

// Classify возвращает тональность и уверенность в процентах
func (a *LocalClassifierAdapter) Classify(ctx context.Context, text string) (entity.Sentiment, string, error) {
	model, err := resolveAs(ctx, a.registry, AdapterLocalClassifier, a.init)
	if err != nil {
		return "", "", err
	}

	result, err := model.Classify(ctx, truncateRunes(text, classifierMaxInput))
	if err != nil {
		return "", "", fmt.Errorf("classify: %w", err)
	}

	return MapLabel(result.Label), FormatConfidence(result.Score), nil
}

// MapLabel сопоставляет метку модели с тональностью по подстроке
func MapLabel(label string) entity.Sentiment {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "pos"):
		return entity.SentimentPositive
	case strings.Contains(lower, "neg"):
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// FormatConfidence 0.9876 -> "98.76%"
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// LocalSummarizerAdapter локальная модель суммаризации
type LocalSummarizerAdapter struct {
	registry *AdapterRegistry
	init     SummarizerInit
}

func NewLocalSummarizerAdapter(registry *AdapterRegistry, init SummarizerInit) *LocalSummarizerAdapter {
	return &LocalSummarizerAdapter{registry: registry, init: init}
}

// KeyPoints суммаризирует текст и превращает предложения резюме в пункты
func (a *LocalSummarizerAdapter) KeyPoints(ctx context.Context, text string, maxPoints int) (string, error) {
	model, err := resolveAs(ctx, a.registry, AdapterLocalSummarizer, a.init)
	if err != nil {
		return "", err
	}

	summary, err := model.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	points := splitSummary(summary, maxPoints)
	if points == "" {
		return "", ErrEmptyGeneration
	}
	return points, nil
}

// splitSummary режет резюме по концу предложения, пунктуация отбрасывается
func splitSummary(summary string, maxPoints int) string {
	fragments := strings.FieldsFunc(summary, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			sentences = append(sentences, f)
		}
	}
	return bulletize(sentences, maxPoints)
}

// GenerativeAdapter удалённая генеративная модель
type GenerativeAdapter struct {
	registry *AdapterRegistry
	init     GeneratorInit
}

func NewGenerativeAdapter(registry *AdapterRegistry, init GeneratorInit) *GenerativeAdapter {
	return &GenerativeAdapter{registry: registry, init: init}
}

// KeyPoints просит модель выделить до maxPoints пунктов, ответ возвращается как есть
func (a *GenerativeAdapter) KeyPoints(ctx context.Context, text string, maxPoints int) (string, error) {
	generator, err := resolveAs(ctx, a.registry, AdapterGenerative, a.init)
	if err != nil {
		return "", err
	}

	out, err := generator.Generate(ctx, BuildKeyPointsPrompt(text, maxPoints))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyGeneration
	}
	return out, nil
}

// BuildKeyPointsPrompt фиксированная инструкция для генеративной модели
func BuildKeyPointsPrompt(text string, maxPoints int) string {
	return fmt.Sprintf(
		"Extract up to %d concise bullet points (in Indonesian) from the following restaurant/food review. "+
			"Focus on food quality, portion, price, service, ambience, and other concrete observations.\n\n"+
			"Review:\n%s\n\n"+
			"Respond as bullet points starting with '- '",
		maxPoints, text,
	)
}

// bulletize оставляет первые maxPoints строк и добавляет маркер "- "
func bulletize(sentences []string, maxPoints int) string {
	if maxPoints > 0 && len(sentences) > maxPoints {
		sentences = sentences[:maxPoints]
	}

	lines := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, "- "+s)
		}
	}
	return strings.Join(lines, "\n")
}

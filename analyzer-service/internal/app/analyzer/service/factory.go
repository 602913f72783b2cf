package service

import (
	"context"
	"fmt"

	"foodreview/analyzer-service/internal/app/analyzer/config"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure/genai"
	inference "foodreview/analyzer-service/internal/app/analyzer/infrastructure/http"
)

// Короткий текст для пробного вызова модели при инициализации
const warmupText = "Makanan enak."

// NewLocalClassifierInit адаптер доступен, только если endpoint задан и отвечает
func NewLocalClassifierInit(cfg config.LocalModelConfig) ClassifierInit {
	return func(ctx context.Context) (infrastructure.SentimentModel, error) {
		if cfg.ClassifierURL == "" {
			return nil, fmt.Errorf("%w: LOCAL_CLASSIFIER_URL not set", infrastructure.ErrAdapterUnavailable)
		}

		client := inference.NewInferenceClient(cfg.ClassifierURL, cfg.Timeout)
		if _, err := client.Classify(ctx, warmupText); err != nil {
			return nil, fmt.Errorf("classifier warm-up failed: %w", err)
		}
		return client, nil
	}
}

func NewLocalSummarizerInit(cfg config.LocalModelConfig) SummarizerInit {
	return func(ctx context.Context) (infrastructure.SummaryModel, error) {
		if cfg.SummarizerURL == "" {
			return nil, fmt.Errorf("%w: LOCAL_SUMMARIZER_URL not set", infrastructure.ErrAdapterUnavailable)
		}

		client := inference.NewInferenceClient(cfg.SummarizerURL, cfg.Timeout)
		if _, err := client.Summarize(ctx, warmupText); err != nil {
			return nil, fmt.Errorf("summarizer warm-up failed: %w", err)
		}
		return client, nil
	}
}

// NewGeneratorInit без ключа API адаптер недоступен и в сеть не ходит
func NewGeneratorInit(cfg config.GenerativeConfig) GeneratorInit {
	return func(ctx context.Context) (infrastructure.TextGenerator, error) {
		switch cfg.Provider {
		case config.ProviderOpenAI:
			if cfg.OpenAIAPIKey == "" {
				return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", infrastructure.ErrAdapterUnavailable)
			}
			return genai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
		case config.ProviderGemini, "":
			if cfg.GeminiAPIKey == "" {
				return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", infrastructure.ErrAdapterUnavailable)
			}
			return genai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		default:
			return nil, fmt.Errorf("%w: unknown generative provider %q", infrastructure.ErrAdapterUnavailable, cfg.Provider)
		}
	}
}

// NewPipelineFromConfig собирает конвейер с адаптерами из конфигурации
func NewPipelineFromConfig(cfg *config.Config, registry *AdapterRegistry) *Pipeline {
	classifier := NewLocalClassifierAdapter(registry, NewLocalClassifierInit(cfg.LocalModel))
	generative := NewGenerativeAdapter(registry, NewGeneratorInit(cfg.Generative))
	summarizer := NewLocalSummarizerAdapter(registry, NewLocalSummarizerInit(cfg.LocalModel))

	maxPoints := cfg.Analysis.MaxKeyPoints
	return NewPipeline(classifier,
		NewGenerativeStrategy(generative, maxPoints),
		NewSummarizerStrategy(summarizer, maxPoints),
		NewNaiveSplitStrategy(maxPoints),
	)
}

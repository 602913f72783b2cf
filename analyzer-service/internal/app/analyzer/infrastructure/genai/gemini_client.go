package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-pro"

var (
	ErrNoCandidates = errors.New("no candidates in response")
	ErrEmptyText    = errors.New("empty text in response")
)

// GeminiClient генерация текста через Google Generative AI
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient создает клиент, сетевых запросов при создании нет
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate отправляет промпт и возвращает обрезанный текст первого кандидата
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return extractText(resp)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyText
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
)

// Параметры суммаризации фиксированы
const (
	summaryMinLength = 20
	summaryMaxLength = 80
)

var errEmptyResponse = errors.New("empty inference response")

// InferenceClient клиент для локальных моделей, поднятых как HTTP inference endpoint.
// Формат запросов и ответов совпадает с HuggingFace Inference API.
type InferenceClient struct {
	url        string
	httpClient *http.Client
}

// NewInferenceClient создает новый клиент для endpoint модели
func NewInferenceClient(url string, timeout time.Duration) *InferenceClient {
	return &InferenceClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout, // Таймаут для HTTP запросов
		},
	}
}

type inferenceRequest struct {
	Inputs     string      `json:"inputs"`
	Parameters interface{} `json:"parameters,omitempty"`
}

type summaryParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type summaryResult struct {
	SummaryText string `json:"summary_text"`
}

// Classify возвращает метку с наибольшей уверенностью
func (c *InferenceClient) Classify(ctx context.Context, text string) (entity.ModelLabel, error) {
	body, err := c.post(ctx, inferenceRequest{Inputs: text})
	if err != nil {
		return entity.ModelLabel{}, err
	}

	labels, err := decodeLabels(body)
	if err != nil {
		return entity.ModelLabel{}, err
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, nil
}

// Summarize возвращает краткое изложение текста
func (c *InferenceClient) Summarize(ctx context.Context, text string) (string, error) {
	body, err := c.post(ctx, inferenceRequest{
		Inputs: text,
		Parameters: summaryParameters{
			MinLength: summaryMinLength,
			MaxLength: summaryMaxLength,
			DoSample:  false,
		},
	})
	if err != nil {
		return "", err
	}

	var results []summaryResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", errEmptyResponse
	}
	return results[0].SummaryText, nil
}

func (c *InferenceClient) post(ctx context.Context, payload inferenceRequest) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return body, nil
}

// decodeLabels принимает как [{...}], так и [[{...}]]
func decodeLabels(body []byte) ([]entity.ModelLabel, error) {
	var nested [][]entity.ModelLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) > 0 && len(nested[0]) > 0 {
			return nested[0], nil
		}
		return nil, errEmptyResponse
	}

	var flat []entity.ModelLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(flat) == 0 {
		return nil, errEmptyResponse
	}
	return flat, nil
}

package entity

import (
	"encoding/json"
	"strings"
)

// AnalyzeReviewRequest - тело POST /api/analyze-review.
// content принимается как синоним review_text. Поля не типизированы,
// чтобы отличать отсутствие поля от значения неверного типа.
type AnalyzeReviewRequest struct {
	ReviewText interface{} `json:"review_text"`
	Content    interface{} `json:"content"`
}

// ResolveText выбирает review_text, а если он пустой или отсутствует - content.
// Пустыми считаются null, "", 0, false, [] и {}.
// Возвращает false, если выбранное значение не строка.
func (r AnalyzeReviewRequest) ResolveText() (string, bool) {
	value := r.ReviewText
	if isEmptyValue(value) {
		value = r.Content
	}
	if isEmptyValue(value) {
		return "", true
	}
	text, ok := value.(string)
	return text, ok
}

func isEmptyValue(v interface{}) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case bool:
		return !value
	case float64:
		return value == 0
	case json.Number:
		f, err := value.Float64()
		return err == nil && f == 0
	case []interface{}:
		return len(value) == 0
	case map[string]interface{}:
		return len(value) == 0
	}
	return false
}

// ReviewInput - проверяемый вход после выбора поля
type ReviewInput struct {
	Text string `validate:"notblank"`
}

// Trimmed возвращает текст без пробелов по краям, именно он сохраняется
func (in ReviewInput) Trimmed() string {
	return strings.TrimSpace(in.Text)
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// AnalyzeReviewResponse - ответ на успешный анализ
type AnalyzeReviewResponse struct {
	Success bool    `json:"success"`
	Data    *Review `json:"data"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Data    []Review `json:"data"`
}

// ServiceInfoResponse - метаданные сервиса для GET /
type ServiceInfoResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

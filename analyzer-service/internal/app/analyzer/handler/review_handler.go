package handler

import (
	"errors"
	"fmt"
	"net/http"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/analyzer-service/internal/app/analyzer/service"
	"foodreview/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	serviceName = "analyzer-service"

	errReviewTextRequired = "Field 'review_text' is required"
	errInternal           = "internal server error"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	v := validator.New()
	// notblank отсекает строки из одних пробелов
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}

	return &ReviewHandler{
		reviewService: reviewService,
		validator:     v,
	}
}

// Home метаданные сервиса
func (h *ReviewHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, entity.ServiceInfoResponse{
		Message: "Food Review Analyzer API (Go)",
		Status:  "running",
		Endpoints: map[string]string{
			"POST /api/analyze-review": `Analyze a new food review. JSON: {"review_text":"..."}`,
			"GET /api/reviews":         "Get all saved reviews",
		},
	})
}

// AnalyzeReview POST /api/analyze-review
func (h *ReviewHandler) AnalyzeReview(c *gin.Context) {
	var req entity.AnalyzeReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Некорректный JSON обрабатывается как пустое тело
		req = entity.AnalyzeReviewRequest{}
	}

	text, ok := req.ResolveText()
	if !ok {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: errReviewTextRequired})
		return
	}

	input := entity.ReviewInput{Text: text}
	if err := h.validator.Struct(input); err != nil {
		logger.Debug().Str("validation", formatValidationError(err)).Msg("Rejected review")
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: errReviewTextRequired})
		return
	}

	review, err := h.reviewService.AnalyzeReview(c.Request.Context(), input.Trimmed())
	if err != nil {
		if errors.Is(err, service.ErrEmptyReview) {
			c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: errReviewTextRequired})
			return
		}
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.AnalyzeReviewResponse{Success: true, Data: review})
}

// ListReviews GET /api/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context())
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if reviews == nil {
		reviews = make([]entity.Review, 0)
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Success: true,
		Count:   len(reviews),
		Data:    reviews,
	})
}

func respondInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: errInternal, Detail: err.Error()})
}

// recoverToJSON паника в обработчике отдаётся тем же телом 500
func recoverToJSON(c *gin.Context, recovered interface{}) {
	logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")

	detail := "unexpected error"
	switch v := recovered.(type) {
	case error:
		detail = v.Error()
	case string:
		detail = v
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, entity.ErrorResponse{Error: errInternal, Detail: detail})
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger зависимость, доступность которой проверяется в readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdapterStates снимок состояний адаптеров моделей
type AdapterStates interface {
	States() map[string]string
}

type HealthCheckHandler struct {
	database Pinger
	redis    Pinger // nil, если кеш не настроен
	adapters AdapterStates
}

func NewHealthCheckHandler(database Pinger, redis Pinger, adapters AdapterStates) *HealthCheckHandler {
	return &HealthCheckHandler{
		database: database,
		redis:    redis,
		adapters: adapters,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Adapters  map[string]string `json:"adapters,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
	})
}

// Readiness 503, если хранилище или Redis недоступны.
// Состояние адаптеров информативно и на статус не влияет.
func (h *HealthCheckHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "ready"

	if err := h.database.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "not ready"
	} else {
		checks["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			overallStatus = "not ready"
		} else {
			checks["redis"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	}
	if h.adapters != nil {
		response.Adapters = h.adapters.States()
	}

	status := http.StatusOK
	if overallStatus != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

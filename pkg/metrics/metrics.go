package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="analyzer-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Верхние бакеты больше обычного: первый запрос может ждать загрузку модели
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения запросов к хранилищу отзывов
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики (кеш списка отзывов)
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные события REVIEW_ANALYZED
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (анализ отзывов)
// =============================================================================

// ReviewsAnalyzed - сохранённые отзывы по итоговой тональности
var ReviewsAnalyzed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_analyzed_total",
		Help: "Total number of analyzed and stored reviews",
	},
	[]string{"sentiment"}, // positive, negative, neutral
)

// AnalysisTierUsed - какой уровень цепочки дал результат
// stage: sentiment, key_points; tier: имя адаптера
var AnalysisTierUsed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analysis_tier_total",
		Help: "Number of analysis results produced by each fallback tier",
	},
	[]string{"stage", "tier"},
)

// AdapterFailures - отказы адаптеров (недоступен или ошибка выполнения)
var AdapterFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analysis_adapter_failures_total",
		Help: "Number of analysis adapter failures",
	},
	[]string{"adapter", "reason"}, // reason: unavailable, error
)

// ReviewsBySentiment - количество сохранённых отзывов, обновляется cron задачей
var ReviewsBySentiment = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "reviews_by_sentiment",
		Help: "Number of stored reviews by sentiment",
	},
	[]string{"sentiment"},
)

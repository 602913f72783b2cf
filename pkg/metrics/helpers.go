package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(kt.service, kt.topic, "produce").Inc()
}

type DbOperation string

const (
	DbOpSelect  DbOperation = "select"
	DbOpInsert  DbOperation = "insert"
	DbOpMigrate DbOperation = "migrate"
)

type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: op,
		table:     table,
		start:     time.Now(),
	}
}

// ObserveDuration фиксирует время и, если err != nil, счётчик ошибок
func (dt *DbTimer) ObserveDuration(err error) {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
	if err != nil {
		DbErrors.WithLabelValues(dt.service, string(dt.operation)).Inc()
	}
}

func RecordReviewAnalyzed(sentiment string) {
	ReviewsAnalyzed.WithLabelValues(sentiment).Inc()
}

func RecordAnalysisTier(stage, tier string) {
	AnalysisTierUsed.WithLabelValues(stage, tier).Inc()
}

func RecordAdapterFailure(adapter, reason string) {
	AdapterFailures.WithLabelValues(adapter, reason).Inc()
}

func SetReviewsBySentiment(sentiment string, count int64) {
	ReviewsBySentiment.WithLabelValues(sentiment).Set(float64(count))
}

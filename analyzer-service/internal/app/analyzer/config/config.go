package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Generative GenerativeConfig
	LocalModel LocalModelConfig
	Analysis   AnalysisConfig
	Kafka      KafkaConfig
	Redis      RedisConfig
	Stats      StatsConfig
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 5000)
}

type DatabaseConfig struct {
	URL string // sqlite://..., postgres://..., mongodb://...
}

type GenerativeConfig struct {
	Provider      string // gemini | openai
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string // пусто - публичный API
}

type LocalModelConfig struct {
	ClassifierURL string // endpoint классификатора тональности, пусто - отключён
	SummarizerURL string // endpoint суммаризатора, пусто - отключён
	Timeout       time.Duration
}

type AnalysisConfig struct {
	MaxKeyPoints int
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port), пусто - события не публикуются
	Topic   string   // Топик для событий REVIEW_ANALYZED
}

type RedisConfig struct {
	Addr     string // пусто - кеш отключён
	Password string
	DB       int
	TTL      time.Duration
}

type StatsConfig struct {
	Schedule string // cron-выражение пересчёта статистики
}

type CORSConfig struct {
	AllowOrigins []string
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongodb"
)

const defaultMaxKeyPoints = 5

// Load читает окружение один раз при старте. Файл .env необязателен.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
			Port: getEnv("PORT", "5000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "sqlite://./reviews.db"),
		},
		Generative: GenerativeConfig{
			Provider:      strings.ToLower(getEnv("GENERATIVE_PROVIDER", ProviderGemini)),
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-pro"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		LocalModel: LocalModelConfig{
			ClassifierURL: getEnv("LOCAL_CLASSIFIER_URL", ""),
			SummarizerURL: getEnv("LOCAL_SUMMARIZER_URL", ""),
			Timeout:       time.Duration(getEnvInt("LOCAL_MODEL_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Analysis: AnalysisConfig{
			MaxKeyPoints: getEnvPositiveInt("MAX_KEY_POINTS", defaultMaxKeyPoints),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Stats: StatsConfig{
			Schedule: getEnv("STATS_CRON", "@every 1m"),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Driver определяет хранилище по схеме DATABASE_URL
func (c *DatabaseConfig) Driver() string {
	lower := strings.ToLower(c.URL)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return DriverMongo
	default:
		return DriverSQLite
	}
}

// SQLitePath возвращает путь к файлу базы. Как в SQLAlchemy: sqlite:///rel.db
// относительный путь, sqlite:////abs.db абсолютный, пустой sqlite:// в памяти.
// Короткая форма sqlite://path тоже принимается.
func (c *DatabaseConfig) SQLitePath() string {
	path := c.URL
	switch {
	case strings.HasPrefix(path, "sqlite:///"):
		path = strings.TrimPrefix(path, "sqlite:///")
	case strings.HasPrefix(path, "sqlite://"):
		path = strings.TrimPrefix(path, "sqlite://")
		if path == "" {
			return ":memory:"
		}
	}
	if path == "" {
		return "reviews.db"
	}
	return path
}

// Enabled сообщает, настроен ли кеш
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Enabled сообщает, настроены ли брокеры
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvPositiveInt ноль и отрицательные значения заменяются значением по умолчанию
func getEnvPositiveInt(key string, defaultValue int) int {
	if n := getEnvInt(key, defaultValue); n > 0 {
		return n
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"foodreview/analyzer-service/internal/app/analyzer/config"
	"foodreview/analyzer-service/internal/app/analyzer/handler"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure/cache"
	"foodreview/analyzer-service/internal/app/analyzer/infrastructure/messaging"
	"foodreview/analyzer-service/internal/app/analyzer/processor"
	"foodreview/analyzer-service/internal/app/analyzer/repository"
	"foodreview/analyzer-service/internal/app/analyzer/service"
	"foodreview/pkg/logger"
)

const serviceName = "analyzer-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Log.Level)

	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Log.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	reviewRepo, closeStore, err := openReviewRepository(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver()).Msg("Failed to open review storage")
	}
	defer closeStore()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := reviewRepo.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Fatal().Err(err).Msg("Failed to migrate review storage")
	}
	migrateCancel()
	logger.Info().Str("driver", cfg.Database.Driver()).Msg("Review storage ready")

	var (
		reviewCache infrastructure.ReviewCache = infrastructure.NoopCache{}
		redisPinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, reviews cache disabled")
		} else {
			redisCache := cache.NewRedisCache(redisClient, cfg.Redis.TTL)
			defer redisCache.Close()
			reviewCache = redisCache
			redisPinger = redisCache
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	var publisher infrastructure.MessagePublisher = infrastructure.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		logger.Info().
			Str("topic", cfg.Kafka.Topic).
			Strs("brokers", cfg.Kafka.Brokers).
			Msg("Initialized Kafka producer")
	}

	registry := service.DefaultRegistry()
	pipeline := service.NewPipelineFromConfig(cfg, registry)
	logGenerativeMode(cfg.Generative)

	reviewService := service.NewReviewService(reviewRepo, pipeline, reviewCache, publisher)
	statsService := service.NewStatsService(reviewRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := processor.NewCronScheduler(statsService)
	if err := scheduler.Start(ctx, cfg.Stats.Schedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Stats.Schedule).Msg("Failed to start stats scheduler")
	}

	reviewHandler := handler.NewReviewHandler(reviewService)
	healthHandler := handler.NewHealthCheckHandler(reviewRepo, redisPinger, registry)
	router := handler.SetupRoutes(reviewHandler, healthHandler, cfg.CORS.AllowOrigins)

	server := &http.Server{
		Addr:        cfg.Server.Address(),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// анализ может ждать внешнюю модель
		WriteTimeout: 2*cfg.LocalModel.Timeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Food Review Analyzer")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Food Review Analyzer...")

	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Food Review Analyzer stopped gracefully")
}

// openReviewRepository выбирает хранилище по схеме DATABASE_URL
func openReviewRepository(cfg config.DatabaseConfig) (repository.ReviewRepository, func(), error) {
	switch cfg.Driver() {
	case config.DriverPostgres:
		db, err := connectPostgres(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("Connected to PostgreSQL")
		return repository.NewGormReviewRepository(db), func() { closeSQL(sqlDB) }, nil

	case config.DriverMongo:
		dbName, err := repository.MongoDatabaseName(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		client, err := connectMongoDB(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("database", dbName).Msg("Connected to MongoDB")
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
			}
		}
		return repository.NewMongoReviewRepository(client.Database(dbName)), closeFn, nil

	default:
		path := cfg.SQLitePath()
		db, err := repository.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", path).Msg("Opened SQLite database")
		return repository.NewGormReviewRepository(db), func() { closeSQL(sqlDB) }, nil
	}
}

func closeSQL(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing database")
	}
}

func connectPostgres(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				if err = sqlDB.Ping(); err == nil {
					return db, nil
				}
			} else {
				err = dbErr
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

func connectMongoDB(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, clientOptions)
		cancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(pingCtx, nil)
			pingCancel()
			if err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}

func logGenerativeMode(cfg config.GenerativeConfig) {
	var hasKey bool
	switch cfg.Provider {
	case config.ProviderOpenAI:
		hasKey = cfg.OpenAIAPIKey != ""
	default:
		hasKey = cfg.GeminiAPIKey != ""
	}

	if hasKey {
		logger.Info().Str("provider", cfg.Provider).Msg("Generative API key available, it will be used for key points")
	} else {
		logger.Info().Str("provider", cfg.Provider).Msg("Generative API key not set, using local summarizer or sentence split for key points")
	}
}

package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"
	"foodreview/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "food_reviews"
	reviewsCounterID     = "reviews"
)

type mongoReviewRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection // последовательности целочисленных id
}

// MongoDatabaseName извлекает имя базы из пути URI
func MongoDatabaseName(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDatabaseURL, err)
	}
	if parsed.Scheme != "mongodb" && parsed.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("%w: unexpected scheme %q", ErrInvalidDatabaseURL, parsed.Scheme)
	}
	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		return defaultMongoDatabase, nil
	}
	return name, nil
}

// NewMongoReviewRepository создает репозиторий отзывов в MongoDB
func NewMongoReviewRepository(db *mongo.Database) ReviewRepository {
	return &mongoReviewRepository{
		collection: db.Collection("reviews"),
		counters:   db.Collection("counters"),
	}
}

// Migrate создает индекс по created_at для сортировки ленты
func (r *mongoReviewRepository) Migrate(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		},
		Options: options.Index().SetName("created_at_idx"),
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpMigrate, "reviews")
	_, err := r.collection.Indexes().CreateOne(ctx, indexModel)
	timer.ObserveDuration(err)
	if err != nil {
		return fmt.Errorf("failed to create index on created_at: %w", err)
	}
	return nil
}

// nextID атомарно увеличивает счётчик отзывов
func (r *mongoReviewRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": reviewsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate review id: %w", err)
	}
	return counter.Seq, nil
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	review.ID = id
	// MongoDB хранит время с точностью до миллисекунд
	review.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	_, err = r.collection.InsertOne(ctx, review)
	timer.ObserveDuration(err)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *mongoReviewRepository) GetAll(ctx context.Context) ([]entity.Review, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	timer.ObserveDuration(err)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	for i := range reviews {
		reviews[i].CreatedAt = reviews[i].CreatedAt.UTC()
	}
	return reviews, nil
}

func (r *mongoReviewRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return total, nil
}

func (r *mongoReviewRepository) CountBySentiment(ctx context.Context) (map[entity.Sentiment]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sentiment"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sentiment string `bson:"_id"`
		Total     int64  `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment counts: %w", err)
	}

	counts := make(map[entity.Sentiment]int64, len(rows))
	for _, row := range rows {
		counts[entity.Sentiment(row.Sentiment)] = row.Total
	}
	return counts, nil
}

func (r *mongoReviewRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}

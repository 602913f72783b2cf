package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"foodreview/analyzer-service/internal/app/analyzer/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormReviewRepositoryTestSuite тестовый suite для PostgreSQL repository
type GormReviewRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ReviewRepository
	sqlDB *sql.DB
}

func TestGormReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(GormReviewRepositoryTestSuite))
}

func (s *GormReviewRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewGormReviewRepository(s.db)
}

func (s *GormReviewRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== Create Tests =====================

func (s *GormReviewRepositoryTestSuite) TestCreate_AssignsIDAndCreatedAt() {
	ctx := context.Background()
	review := &entity.Review{
		ReviewText: "Makanan enak",
		Sentiment:  entity.SentimentPositive,
		Confidence: entity.ConfidenceFallback,
		KeyPoints:  "- Makanan enak",
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	s.mock.ExpectCommit()

	// Act
	before := time.Now().UTC()
	err := s.repo.Create(ctx, review)

	// Assert
	s.NoError(err)
	s.Equal(int64(7), review.ID)
	s.Equal(time.UTC, review.CreatedAt.Location())
	s.False(review.CreatedAt.Before(before.Add(-time.Second)))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *GormReviewRepositoryTestSuite) TestCreate_DatabaseError() {
	ctx := context.Background()
	review := &entity.Review{ReviewText: "Pelayanan lambat", Sentiment: entity.SentimentNegative}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "reviews"`)).
		WillReturnError(errors.New("connection reset"))
	s.mock.ExpectRollback()

	// Act
	err := s.repo.Create(ctx, review)

	// Assert
	s.Error(err)
	s.Contains(err.Error(), "failed to create review")
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetAll Tests =====================

func (s *GormReviewRepositoryTestSuite) TestGetAll_NewestFirst() {
	ctx := context.Background()
	newer := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "review_text", "sentiment", "confidence", "key_points", "created_at"}).
		AddRow(2, "Harga mahal", "negative", "91.20%", "- Harga mahal", newer).
		AddRow(1, "Enak", "positive", "fallback", "- Enak", older)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(rows)

	// Act
	reviews, err := s.repo.GetAll(ctx)

	// Assert
	s.NoError(err)
	s.Len(reviews, 2)
	s.Equal(int64(2), reviews[0].ID)
	s.Equal(entity.SentimentNegative, reviews[0].Sentiment)
	s.Equal("91.20%", reviews[0].Confidence)
	s.Equal(int64(1), reviews[1].ID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *GormReviewRepositoryTestSuite) TestGetAll_EmptyIsNotNil() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "review_text", "sentiment", "confidence", "key_points", "created_at"}))

	// Act
	reviews, err := s.repo.GetAll(ctx)

	// Assert
	s.NoError(err)
	s.NotNil(reviews)
	s.Empty(reviews)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Count Tests =====================

func (s *GormReviewRepositoryTestSuite) TestCount() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reviews"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	// Act
	total, err := s.repo.Count(ctx)

	// Assert
	s.NoError(err)
	s.Equal(int64(3), total)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *GormReviewRepositoryTestSuite) TestCountBySentiment() {
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"sentiment", "total"}).
		AddRow("positive", 4).
		AddRow("neutral", 1)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT sentiment, count(*) AS total FROM "reviews" GROUP BY`)).
		WillReturnRows(rows)

	// Act
	counts, err := s.repo.CountBySentiment(ctx)

	// Assert
	s.NoError(err)
	s.Equal(int64(4), counts[entity.SentimentPositive])
	s.Equal(int64(1), counts[entity.SentimentNeutral])
	s.Equal(int64(0), counts[entity.SentimentNegative])
	s.NoError(s.mock.ExpectationsWereMet())
}

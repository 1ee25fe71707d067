package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

var scanColumns = []string{
	"id", "vendor_id", "customer_name", "customer_email", "rating", "title", "comment", "verified_purchase",
	"order_id", "product_id", "status", "helpful_count", "not_helpful_count", "vendor_response", "vendor_response_at",
	"moderation_note", "moderated_by", "moderated_at", "created_at", "updated_at",
}

func reviewRow(reviewID id.ReviewID, vendorID id.VendorID, rating float64, status string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(scanColumns).AddRow(
		reviewID.String(), vendorID.String(), "Ana", "ana@example.test", rating, "", "", true,
		"", "", status, 2, 0, "", nil,
		"", "", nil, now, now,
	)
}

func TestPostgresFindByIDDerivesSentiment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reviewID, vendorID := id.ReviewID(uuid.New()), id.VendorID(uuid.New())
	mock.ExpectQuery(regexp.QuoteMeta("FROM vendor_reviews WHERE id = $1")).
		WithArgs(reviewID.String()).
		WillReturnRows(reviewRow(reviewID, vendorID, 2.5, "PENDING", now))

	r, err := NewPostgres(db).FindByID(context.Background(), reviewID)
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, r.Sentiment)
	assert.Equal(t, 2, r.HelpfulCount)
	assert.True(t, r.VerifiedPurchase)
	assert.Nil(t, r.ModeratedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExecuteMapsApprovedClash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reviewID := id.ReviewID(uuid.New())
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(reviewRow(reviewID, id.VendorID(uuid.New()), 4, "PENDING", now))
	mock.ExpectExec("UPDATE vendor_reviews SET").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = NewPostgres(db).Execute(context.Background(), reviewID,
		func(*models.Review) error { return nil },
		func(r *models.Review) { r.ApplyModeration(models.StatusApproved, "mod1", "", now) },
	)
	require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByVendorSentimentClause(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vendorID := id.VendorID(uuid.New())
	mock.ExpectQuery(regexp.QuoteMeta("AND rating > 3.0 ORDER BY created_at DESC")).
		WithArgs(vendorID.String(), "APPROVED").
		WillReturnRows(sqlmock.NewRows(scanColumns))

	reviews, err := NewPostgres(db).ListByVendor(context.Background(), vendorID, models.ListFilter{
		Status:    models.StatusApproved,
		Sentiment: models.SentimentPositive,
	})
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.NotNil(t, reviews)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApprovedTotalsAndStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vendorID := id.VendorID(uuid.New())
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(rating\\), 0\\), COUNT\\(\\*\\)").
		WithArgs(vendorID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow(6.5, 2))
	mock.ExpectQuery("FROM vendor_reviews WHERE vendor_id").
		WillReturnRows(sqlmock.NewRows([]string{"total", "approved", "pending", "verified", "sum"}).AddRow(3, 2, 1, 1, 6.5))
	mock.ExpectQuery("GROUP BY stars").
		WillReturnRows(sqlmock.NewRows([]string{"stars", "count"}).AddRow(4, 1).AddRow(2, 1))

	store := NewPostgres(db)
	sum, count, err := store.ApprovedTotals(context.Background(), vendorID)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, sum, 1e-9)
	assert.Equal(t, 2, count)

	stats, err := store.Stats(context.Background(), vendorID)
	require.NoError(t, err)
	assert.InDelta(t, 3.25, stats.AverageRating, 1e-9)
	assert.Equal(t, 1, stats.Distribution[4])
	assert.Equal(t, 0, stats.Distribution[5])
	require.NoError(t, mock.ExpectationsWereMet())
}

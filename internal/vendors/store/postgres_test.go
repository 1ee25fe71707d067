package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

var scanColumns = []string{
	"id", "name", "contact_email", "phone", "website", "street", "city", "state", "country", "postal_code",
	"business_description", "business_category", "license_number", "tax_id",
	"facebook_url", "instagram_url", "twitter_url",
	"status", "is_verified", "verified_at", "verified_by",
	"average_rating", "total_reviews", "total_sales", "total_revenue", "created_at", "updated_at",
}

func vendorRow(vendorID id.VendorID, status string, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(scanColumns).AddRow(
		vendorID.String(), "Acme", "ops@acme.test", "", "", "", "", "", "", "",
		"", "food", "", "",
		"", "", "",
		status, false, nil, "",
		3.25, 2, 0, 0.0, now, now,
	)
}

func TestPostgresFindByID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("scans a row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		vendorID := id.VendorID(uuid.New())
		mock.ExpectQuery(regexp.QuoteMeta("FROM vendors WHERE id = $1")).
			WithArgs(vendorID.String()).
			WillReturnRows(vendorRow(vendorID, "APPROVED", now))

		v, err := NewPostgres(db).FindByID(context.Background(), vendorID)
		require.NoError(t, err)
		assert.Equal(t, vendorID, v.ID)
		assert.Equal(t, models.StatusApproved, v.Status)
		assert.InDelta(t, 3.25, v.AverageRating, 1e-9)
		assert.Nil(t, v.VerifiedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM vendors").WillReturnRows(sqlmock.NewRows(scanColumns))

		_, err = NewPostgres(db).FindByID(context.Background(), id.VendorID(uuid.New()))
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	v, err := models.NewVendor(id.VendorID(uuid.New()), models.Profile{Name: "Acme", ContactEmail: "ops@acme.test"}, time.Now())
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO vendors").WillReturnError(&pgconn.PgError{Code: "23505"})

	err = NewPostgres(db).Create(context.Background(), v)
	require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExecute(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("locks, mutates and commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		vendorID := id.VendorID(uuid.New())
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
			WithArgs(vendorID.String()).
			WillReturnRows(vendorRow(vendorID, "APPROVED", now))
		mock.ExpectExec("UPDATE vendors SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		v, err := NewPostgres(db).Execute(context.Background(), vendorID,
			func(*models.Vendor) error { return nil },
			func(v *models.Vendor) { v.ApplyVerification("agent1", now) },
		)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, v.Status)
		assert.True(t, v.IsVerified)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation error rolls back without update", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		vendorID := id.VendorID(uuid.New())
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(vendorRow(vendorID, "PENDING", now))
		mock.ExpectRollback()

		boom := errors.New("rejected")
		_, err = NewPostgres(db).Execute(context.Background(), vendorID,
			func(*models.Vendor) error { return boom },
			func(*models.Vendor) {},
		)
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("GROUP BY status").WillReturnRows(
		sqlmock.NewRows([]string{"status", "count", "verified"}).
			AddRow("PENDING", 3, 1).
			AddRow("ACTIVE", 2, 2),
	)

	stats, err := NewPostgres(db).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Verified)
	assert.Equal(t, 2, stats.ByStatus[models.StatusActive])
}

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
)

var scanColumns = []string{
	"id", "vendor_id", "document_type", "document_name", "blob_ref", "file_size", "mime_type",
	"status", "verification_status", "verified_by", "verified_at", "notes", "expiry_date", "created_at", "updated_at",
}

func documentRow(docID id.DocumentID, vendorID id.VendorID, status string, expiry any, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(scanColumns).AddRow(
		docID.String(), vendorID.String(), "license", "license.pdf", "ref-1", int64(42), "application/pdf",
		status, "NOT_VERIFIED", "", nil, "", expiry, now, now,
	)
}

func TestPostgresFindByID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("scans a row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		docID, vendorID := id.DocumentID(uuid.New()), id.VendorID(uuid.New())
		expiry := now.AddDate(1, 0, 0)
		mock.ExpectQuery(regexp.QuoteMeta("FROM vendor_documents WHERE id = $1")).
			WithArgs(docID.String()).
			WillReturnRows(documentRow(docID, vendorID, "PENDING", expiry, now))

		d, err := NewPostgres(db).FindByID(context.Background(), docID)
		require.NoError(t, err)
		assert.Equal(t, vendorID, d.VendorID)
		assert.Equal(t, "ref-1", d.BlobRef)
		assert.EqualValues(t, 42, d.FileSize)
		require.NotNil(t, d.ExpiryDate)
		assert.True(t, d.ExpiryDate.Equal(expiry))
		assert.Nil(t, d.VerifiedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM vendor_documents").WillReturnRows(sqlmock.NewRows(scanColumns))

		_, err = NewPostgres(db).FindByID(context.Background(), id.DocumentID(uuid.New()))
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestPostgresListByVendor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	vendorID := id.VendorID(uuid.New())
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(document_type) = LOWER($2)")).
		WithArgs(vendorID.String(), "license").
		WillReturnRows(documentRow(id.DocumentID(uuid.New()), vendorID, "APPROVED", nil, now))

	docs, err := NewPostgres(db).ListByVendor(context.Background(), vendorID, "license")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, models.StatusApproved, docs[0].Status)
	assert.Nil(t, docs[0].ExpiryDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExecute(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("locks, mutates and commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		docID, vendorID := id.DocumentID(uuid.New()), id.VendorID(uuid.New())
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
			WithArgs(docID.String()).
			WillReturnRows(documentRow(docID, vendorID, "PENDING", nil, now))
		mock.ExpectExec("UPDATE vendor_documents SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		d, err := NewPostgres(db).Execute(context.Background(), docID,
			func(*models.Document) error { return nil },
			func(d *models.Document) { d.ApplyVerify("agent1", "ok", now) },
		)
		require.NoError(t, err)
		assert.Equal(t, models.Verified, d.VerificationStatus)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		docID := id.DocumentID(uuid.New())
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(documentRow(docID, id.VendorID(uuid.New()), "PENDING", nil, now))
		mock.ExpectExec("UPDATE vendor_documents SET").WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err = NewPostgres(db).Execute(context.Background(), docID,
			func(*models.Document) error { return nil },
			func(*models.Document) {},
		)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM vendor_documents").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgres(db).Delete(context.Background(), id.DocumentID(uuid.New()))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	vendorID := id.VendorID(uuid.New())
	mock.ExpectQuery("FROM vendor_documents WHERE vendor_id").
		WithArgs(vendorID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"total", "verified", "pending"}).AddRow(4, 2, 1))
	mock.ExpectQuery("FROM vendor_documents").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "verified", "rejected", "total"}).AddRow(3, 5, 1, 10))

	store := NewPostgres(db)
	vs, err := store.VendorStats(context.Background(), vendorID)
	require.NoError(t, err)
	assert.Equal(t, models.VendorStats{Total: 4, Verified: 2, Pending: 1}, *vs)

	qs, err := store.VerificationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStats{Pending: 3, Verified: 5, Rejected: 1, Total: 10}, *qs)
	require.NoError(t, mock.ExpectationsWereMet())
}

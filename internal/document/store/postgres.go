package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vendorhub/internal/document/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/tx"
)

const documentColumns = `id, vendor_id, document_type, document_name, blob_ref, file_size, mime_type,
	status, verification_status, verified_by, verified_at, notes, expiry_date, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Document) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `INSERT INTO vendor_documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, documentArgs(d)...)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	d, err := scanDocument(tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM vendor_documents WHERE id = $1`, docID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByVendor(ctx context.Context, vendorID id.VendorID, docType string) ([]*models.Document, error) {
	return s.query(ctx, `SELECT `+documentColumns+` FROM vendor_documents
		WHERE vendor_id = $1 AND ($2 = '' OR LOWER(document_type) = LOWER($2))
		ORDER BY created_at DESC, id`, vendorID.String(), docType)
}

func (s *PostgresStore) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Document, error) {
	return s.query(ctx, `SELECT `+documentColumns+` FROM vendor_documents
		WHERE expiry_date IS NOT NULL AND expiry_date >= $1 AND expiry_date <= $2
		ORDER BY expiry_date, id`, from, to)
}

func (s *PostgresStore) ListExpiredBefore(ctx context.Context, now time.Time) ([]*models.Document, error) {
	return s.query(ctx, `SELECT `+documentColumns+` FROM vendor_documents
		WHERE expiry_date IS NOT NULL AND expiry_date < $1
		ORDER BY expiry_date, id`, now)
}

func (s *PostgresStore) Execute(ctx context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error) {
	var result *models.Document
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		d, err := scanDocument(q.QueryRowContext(ctx,
			`SELECT `+documentColumns+` FROM vendor_documents WHERE id = $1 FOR UPDATE`, docID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock document: %w", err)
		}
		if err := validate(d); err != nil {
			return err
		}
		mutate(d)
		_, err = q.ExecContext(ctx, `UPDATE vendor_documents SET
				vendor_id = $2, document_type = $3, document_name = $4, blob_ref = $5, file_size = $6,
				mime_type = $7, status = $8, verification_status = $9, verified_by = $10, verified_at = $11,
				notes = $12, expiry_date = $13, created_at = $14, updated_at = $15
			WHERE id = $1`, documentArgs(d)...)
		if err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM vendor_documents WHERE id = $1`, docID.String())
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountVerified(ctx context.Context, vendorID id.VendorID) (int, error) {
	var n int
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vendor_documents WHERE vendor_id = $1 AND verification_status = $2`,
		vendorID.String(), string(models.Verified)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count verified documents: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) VendorStats(ctx context.Context, vendorID id.VendorID) (*models.VendorStats, error) {
	stats := &models.VendorStats{}
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE verification_status = 'VERIFIED'),
			COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM vendor_documents WHERE vendor_id = $1`, vendorID.String()).
		Scan(&stats.Total, &stats.Verified, &stats.Pending)
	if err != nil {
		return nil, fmt.Errorf("vendor document stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) VerificationStats(ctx context.Context) (*models.VerificationStats, error) {
	stats := &models.VerificationStats{}
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'REJECTED'),
			COUNT(*)
		FROM vendor_documents`).
		Scan(&stats.Pending, &stats.Verified, &stats.Rejected, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("document verification stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func documentArgs(d *models.Document) []any {
	return []any{
		d.ID.String(), d.VendorID.String(), d.DocumentType, d.DocumentName, d.BlobRef, d.FileSize, d.MimeType,
		string(d.Status), string(d.VerificationStatus), d.VerifiedBy, d.VerifiedAt, d.Notes, d.ExpiryDate,
		d.CreatedAt, d.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		d                  models.Document
		rawID, rawVendorID uuid.UUID
		status, vStatus    string
		verifiedAt, expiry sql.NullTime
	)
	err := row.Scan(&rawID, &rawVendorID, &d.DocumentType, &d.DocumentName, &d.BlobRef, &d.FileSize, &d.MimeType,
		&status, &vStatus, &d.VerifiedBy, &verifiedAt, &d.Notes, &expiry, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.ID = id.DocumentID(rawID)
	d.VendorID = id.VendorID(rawVendorID)
	d.Status = models.Status(status)
	d.VerificationStatus = models.VerificationStatus(vStatus)
	d.VerifiedAt = nullTime(verifiedAt)
	d.ExpiryDate = nullTime(expiry)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

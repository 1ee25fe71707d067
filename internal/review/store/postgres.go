package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"vendorhub/internal/review/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/tx"
)

const uniqueViolation = "23505"

const reviewColumns = `id, vendor_id, customer_name, customer_email, rating, title, comment, verified_purchase,
	order_id, product_id, status, helpful_count, not_helpful_count, vendor_response, vendor_response_at,
	moderation_note, moderated_by, moderated_at, created_at, updated_at`

// PostgresStore relies on idx_vendor_reviews_one_approved for the
// one-approved-review rule; violations surface as sentinel.ErrAlreadyUsed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Review) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `INSERT INTO vendor_reviews (`+reviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		reviewArgs(r)...)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	r, err := scanReview(tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM vendor_reviews WHERE id = $1`, reviewID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r, nil
}

// ListByVendor filters status in SQL; sentiment is derived from the rating.
func (s *PostgresStore) ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM vendor_reviews
		WHERE vendor_id = $1 AND ($2 = '' OR status = $2)`
	switch filter.Sentiment {
	case models.SentimentPositive:
		query += ` AND rating > 3.0`
	case models.SentimentNegative:
		query += ` AND rating < 3.0`
	case models.SentimentNeutral:
		query += ` AND rating = 3.0`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, vendorID.String(), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

func (s *PostgresStore) HasApproved(ctx context.Context, vendorID id.VendorID, email string, exclude id.ReviewID) (bool, error) {
	var exists bool
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT EXISTS (
			SELECT 1 FROM vendor_reviews
			WHERE vendor_id = $1 AND LOWER(customer_email) = LOWER($2) AND status = 'APPROVED' AND id <> $3
		)`, vendorID.String(), email, exclude.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved review: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Execute(ctx context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error) {
	var result *models.Review
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		r, err := scanReview(q.QueryRowContext(ctx,
			`SELECT `+reviewColumns+` FROM vendor_reviews WHERE id = $1 FOR UPDATE`, reviewID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock review: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)
		_, err = q.ExecContext(ctx, `UPDATE vendor_reviews SET
				vendor_id = $2, customer_name = $3, customer_email = $4, rating = $5, title = $6, comment = $7,
				verified_purchase = $8, order_id = $9, product_id = $10, status = $11, helpful_count = $12,
				not_helpful_count = $13, vendor_response = $14, vendor_response_at = $15, moderation_note = $16,
				moderated_by = $17, moderated_at = $18, created_at = $19, updated_at = $20
			WHERE id = $1`, reviewArgs(r)...)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("update review: %w", err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, reviewID id.ReviewID) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM vendor_reviews WHERE id = $1`, reviewID.String())
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ApprovedTotals(ctx context.Context, vendorID id.VendorID) (float64, int, error) {
	var (
		sum   float64
		count int
	)
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM vendor_reviews WHERE vendor_id = $1 AND status = 'APPROVED'`,
		vendorID.String()).Scan(&sum, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("approved review totals: %w", err)
	}
	return sum, count, nil
}

func (s *PostgresStore) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats := &models.Stats{Distribution: models.NewDistribution()}
	var sum float64
	q := tx.Pick(ctx, s.db)
	err := q.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED' AND verified_purchase),
			COALESCE(SUM(rating) FILTER (WHERE status = 'APPROVED'), 0)
		FROM vendor_reviews WHERE vendor_id = $1`, vendorID.String()).
		Scan(&stats.Total, &stats.ApprovedCount, &stats.PendingCount, &stats.VerifiedPurchaseCount, &sum)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	stats.AverageRating = models.Mean(sum, stats.ApprovedCount)

	rows, err := q.QueryContext(ctx, `SELECT FLOOR(rating)::int AS stars, COUNT(*)
		FROM vendor_reviews WHERE vendor_id = $1 AND status = 'APPROVED'
		GROUP BY stars`, vendorID.String())
	if err != nil {
		return nil, fmt.Errorf("review distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stars, n int
		if err := rows.Scan(&stars, &n); err != nil {
			return nil, fmt.Errorf("scan review distribution: %w", err)
		}
		stats.Distribution[models.StarBucket(float64(stars))] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review distribution: %w", err)
	}
	return stats, nil
}

func reviewArgs(r *models.Review) []any {
	return []any{
		r.ID.String(), r.VendorID.String(), r.CustomerName, r.CustomerEmail, r.Rating, r.Title, r.Comment,
		r.VerifiedPurchase, r.OrderID, r.ProductID, string(r.Status), r.HelpfulCount, r.NotHelpfulCount,
		r.VendorResponse, r.VendorResponseAt, r.ModerationNote, r.ModeratedBy, r.ModeratedAt,
		r.CreatedAt, r.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	var (
		r                       models.Review
		rawID, rawVendorID      uuid.UUID
		status                  string
		respondedAt, moderateAt sql.NullTime
	)
	err := row.Scan(&rawID, &rawVendorID, &r.CustomerName, &r.CustomerEmail, &r.Rating, &r.Title, &r.Comment,
		&r.VerifiedPurchase, &r.OrderID, &r.ProductID, &status, &r.HelpfulCount, &r.NotHelpfulCount,
		&r.VendorResponse, &respondedAt, &r.ModerationNote, &r.ModeratedBy, &moderateAt,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.ID = id.ReviewID(rawID)
	r.VendorID = id.VendorID(rawVendorID)
	r.Status = models.Status(status)
	r.Sentiment = models.SentimentOf(r.Rating)
	r.VendorResponseAt = nullTime(respondedAt)
	r.ModeratedAt = nullTime(moderateAt)
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

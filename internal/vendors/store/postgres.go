package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"vendorhub/internal/vendors/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/tx"
)

const uniqueViolation = "23505"

const vendorColumns = `id, name, contact_email, phone, website, street, city, state, country, postal_code,
	business_description, business_category, license_number, tax_id,
	facebook_url, instagram_url, twitter_url,
	status, is_verified, verified_at, verified_by,
	average_rating, total_reviews, total_sales, total_revenue, created_at, updated_at`

// PostgresStore persists vendors in PostgreSQL. It is pure I/O; lifecycle
// rules live in the models and service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Vendor) error {
	query := `INSERT INTO vendors (` + vendorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query, vendorArgs(v)...)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, vendorID id.VendorID) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`
	v, err := scanVendor(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, vendorID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Vendor, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, "status = ANY("+arg(pq.Array(statuses))+")")
	}
	if filter.Category != "" {
		where = append(where, "LOWER(business_category) = LOWER("+arg(strings.TrimSpace(filter.Category))+")")
	}
	if filter.Verified != nil {
		where = append(where, "is_verified = "+arg(*filter.Verified))
	}
	if filter.MinRating > 0 {
		where = append(where, "average_rating >= "+arg(filter.MinRating))
	}
	if filter.Query != "" {
		where = append(where, "name ILIKE "+arg("%"+strings.TrimSpace(filter.Query)+"%"))
	}

	query := `SELECT ` + vendorColumns + ` FROM vendors`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	vendors := []*models.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*models.Stats, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT status, COUNT(*), COUNT(*) FILTER (WHERE is_verified) FROM vendors GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("vendor stats: %w", err)
	}
	defer rows.Close()

	stats := &models.Stats{ByStatus: make(map[models.Status]int)}
	for rows.Next() {
		var (
			status          string
			count, verified int
		)
		if err := rows.Scan(&status, &count, &verified); err != nil {
			return nil, fmt.Errorf("scan vendor stats: %w", err)
		}
		stats.ByStatus[models.Status(status)] = count
		stats.Total += count
		stats.Verified += verified
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor stats: %w", err)
	}
	return stats, nil
}

// Execute locks the row with SELECT ... FOR UPDATE, applies validate and
// mutate, and writes the result back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, vendorID id.VendorID, validate func(*models.Vendor) error, mutate func(*models.Vendor)) (*models.Vendor, error) {
	var result *models.Vendor
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		v, err := scanVendor(q.QueryRowContext(ctx,
			`SELECT `+vendorColumns+` FROM vendors WHERE id = $1 FOR UPDATE`, vendorID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock vendor: %w", err)
		}
		if err := validate(v); err != nil {
			return err
		}
		mutate(v)

		_, err = q.ExecContext(ctx, `
			UPDATE vendors SET
				name = $2, contact_email = $3, phone = $4, website = $5, street = $6, city = $7,
				state = $8, country = $9, postal_code = $10, business_description = $11,
				business_category = $12, license_number = $13, tax_id = $14,
				facebook_url = $15, instagram_url = $16, twitter_url = $17,
				status = $18, is_verified = $19, verified_at = $20, verified_by = $21,
				average_rating = $22, total_reviews = $23, total_sales = $24, total_revenue = $25,
				created_at = $26, updated_at = $27
			WHERE id = $1`, vendorArgs(v)...)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("update vendor: %w", err)
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func vendorArgs(v *models.Vendor) []any {
	return []any{
		v.ID.String(), v.Name, v.ContactEmail, v.Phone, v.Website,
		v.Address.Street, v.Address.City, v.Address.State, v.Address.Country, v.Address.PostalCode,
		v.BusinessDescription, v.BusinessCategory, v.LicenseNumber, v.TaxID,
		v.FacebookURL, v.InstagramURL, v.TwitterURL,
		string(v.Status), v.IsVerified, v.VerifiedAt, v.VerifiedBy,
		v.AverageRating, v.TotalReviews, v.TotalSales, v.TotalRevenue, v.CreatedAt, v.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var (
		v          models.Vendor
		rawID      uuid.UUID
		status     string
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&rawID, &v.Name, &v.ContactEmail, &v.Phone, &v.Website,
		&v.Address.Street, &v.Address.City, &v.Address.State, &v.Address.Country, &v.Address.PostalCode,
		&v.BusinessDescription, &v.BusinessCategory, &v.LicenseNumber, &v.TaxID,
		&v.FacebookURL, &v.InstagramURL, &v.TwitterURL,
		&status, &v.IsVerified, &verifiedAt, &v.VerifiedBy,
		&v.AverageRating, &v.TotalReviews, &v.TotalSales, &v.TotalRevenue, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.ID = id.VendorID(rawID)
	v.Status = models.Status(status)
	if verifiedAt.Valid {
		t := verifiedAt.Time.UTC()
		v.VerifiedAt = &t
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

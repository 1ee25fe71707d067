package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vendorhub/internal/verification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/tx"
)

const caseColumns = `id, vendor_id, verification_type, status, priority, initiated_by, initiated_at,
	assigned_to, assigned_at, completed_by, completed_at, verification_score, verification_method,
	external_reference, notes, cancelled_by, cancellation_reason, expiry_date, next_review_date,
	created_at, updated_at`

const priorityRank = `CASE priority WHEN 'URGENT' THEN 3 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END`

var openStatuses = []string{string(models.StatusPending), string(models.StatusInProgress)}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `INSERT INTO verification_cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		caseArgs(c)...)
	if err != nil {
		return fmt.Errorf("insert verification case: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, caseID id.CaseID) (*models.Case, error) {
	c, err := scanCase(tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM verification_cases WHERE id = $1`, caseID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification case: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByVendor(ctx context.Context, vendorID id.VendorID) ([]*models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM verification_cases
		WHERE vendor_id = $1 ORDER BY initiated_at DESC, id`, vendorID.String())
}

func (s *PostgresStore) ListOverdue(ctx context.Context, now time.Time) ([]*models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM verification_cases
		WHERE next_review_date IS NOT NULL AND next_review_date < $1
		ORDER BY next_review_date, id`, now)
}

func (s *PostgresStore) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM verification_cases
		WHERE expiry_date IS NOT NULL AND expiry_date >= $1 AND expiry_date <= $2
		ORDER BY expiry_date, id`, from, to)
}

func (s *PostgresStore) ListHighPriority(ctx context.Context, limit int) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM verification_cases
		WHERE status = ANY($1)
		ORDER BY ` + priorityRank + ` DESC, initiated_at, id`
	args := []any{pq.Array(openStatuses)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

func (s *PostgresStore) Execute(ctx context.Context, caseID id.CaseID, validate func(*models.Case) error, mutate func(*models.Case)) (*models.Case, error) {
	var result *models.Case
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		c, err := scanCase(q.QueryRowContext(ctx,
			`SELECT `+caseColumns+` FROM verification_cases WHERE id = $1 FOR UPDATE`, caseID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock verification case: %w", err)
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)
		if err := c.CheckInvariants(); err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `UPDATE verification_cases SET
				vendor_id = $2, verification_type = $3, status = $4, priority = $5, initiated_by = $6,
				initiated_at = $7, assigned_to = $8, assigned_at = $9, completed_by = $10, completed_at = $11,
				verification_score = $12, verification_method = $13, external_reference = $14, notes = $15,
				cancelled_by = $16, cancellation_reason = $17, expiry_date = $18, next_review_date = $19,
				created_at = $20, updated_at = $21
			WHERE id = $1`, caseArgs(c)...)
		if err != nil {
			return fmt.Errorf("update verification case: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) CountCompleted(ctx context.Context, vendorID id.VendorID) (int, error) {
	var n int
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verification_cases WHERE vendor_id = $1 AND status = $2`,
		vendorID.String(), string(models.StatusCompleted)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count completed cases: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats := &models.Stats{TypeDistribution: map[string]int{}}
	q := tx.Pick(ctx, s.db)
	err := q.QueryRowContext(ctx, `SELECT
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = ANY($2)),
			COALESCE(AVG(verification_score) FILTER (WHERE status = 'COMPLETED' AND verification_score IS NOT NULL), 0)
		FROM verification_cases WHERE vendor_id = $1`, vendorID.String(), pq.Array(openStatuses)).
		Scan(&stats.Completed, &stats.Pending, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("verification case stats: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT verification_type, COUNT(*) FROM verification_cases
		WHERE vendor_id = $1 GROUP BY verification_type`, vendorID.String())
	if err != nil {
		return nil, fmt.Errorf("verification type distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan verification type distribution: %w", err)
		}
		stats.TypeDistribution[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification type distribution: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Case, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verification cases: %w", err)
	}
	defer rows.Close()

	cases := []*models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification cases: %w", err)
	}
	return cases, nil
}

func caseArgs(c *models.Case) []any {
	var score sql.NullInt64
	if c.VerificationScore != nil {
		score = sql.NullInt64{Int64: int64(*c.VerificationScore), Valid: true}
	}
	return []any{
		c.ID.String(), c.VendorID.String(), c.VerificationType, string(c.Status), string(c.Priority),
		c.InitiatedBy, c.InitiatedAt, c.AssignedTo, c.AssignedAt, c.CompletedBy, c.CompletedAt, score,
		c.VerificationMethod, c.ExternalReference, c.Notes, c.CancelledBy, c.CancellationReason,
		c.ExpiryDate, c.NextReviewDate, c.CreatedAt, c.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c                       models.Case
		rawID, rawVendorID      uuid.UUID
		status, priority        string
		assignedAt, completedAt sql.NullTime
		expiry, nextReview      sql.NullTime
		score                   sql.NullInt64
	)
	err := row.Scan(&rawID, &rawVendorID, &c.VerificationType, &status, &priority, &c.InitiatedBy, &c.InitiatedAt,
		&c.AssignedTo, &assignedAt, &c.CompletedBy, &completedAt, &score, &c.VerificationMethod,
		&c.ExternalReference, &c.Notes, &c.CancelledBy, &c.CancellationReason, &expiry, &nextReview,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id.CaseID(rawID)
	c.VendorID = id.VendorID(rawVendorID)
	c.Status = models.Status(status)
	c.Priority = models.Priority(priority)
	c.AssignedAt = nullTime(assignedAt)
	c.CompletedAt = nullTime(completedAt)
	c.ExpiryDate = nullTime(expiry)
	c.NextReviewDate = nullTime(nextReview)
	if score.Valid {
		v := int(score.Int64)
		c.VerificationScore = &v
	}
	c.InitiatedAt = c.InitiatedAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

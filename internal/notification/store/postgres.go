package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vendorhub/internal/notification/models"
	id "vendorhub/pkg/domain"
	"vendorhub/pkg/platform/sentinel"
	"vendorhub/pkg/platform/tx"
)

const notificationColumns = `id, vendor_id, notification_type, title, message, priority, status, read_at,
	action_required, action_url, action_deadline, action_completed, action_completed_at,
	related_entity_type, related_entity_id, created_at, updated_at`

const pendingAction = `action_required AND NOT action_completed AND status <> 'DELETED'`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, `INSERT INTO vendor_notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		notificationArgs(n)...)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	n, err := scanNotification(tx.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM vendor_notifications WHERE id = $1`, notificationID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByVendor(ctx context.Context, vendorID id.VendorID, filter models.ListFilter) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM vendor_notifications WHERE vendor_id = $1`
	args := []any{vendorID.String()}
	if filter.Status != "" {
		query += ` AND status = $2`
		args = append(args, string(filter.Status))
	} else {
		query += ` AND status <> 'DELETED'`
	}
	return s.query(ctx, query+` ORDER BY created_at DESC, id`, args...)
}

func (s *PostgresStore) ListPendingActions(ctx context.Context, vendorID id.VendorID) ([]*models.Notification, error) {
	return s.query(ctx, `SELECT `+notificationColumns+` FROM vendor_notifications
		WHERE vendor_id = $1 AND `+pendingAction+`
		ORDER BY action_deadline ASC NULLS LAST, created_at`, vendorID.String())
}

func (s *PostgresStore) ListOverdueActions(ctx context.Context, vendorID id.VendorID, now time.Time) ([]*models.Notification, error) {
	return s.query(ctx, `SELECT `+notificationColumns+` FROM vendor_notifications
		WHERE vendor_id = $1 AND `+pendingAction+` AND action_deadline IS NOT NULL AND action_deadline < $2
		ORDER BY action_deadline, created_at`, vendorID.String(), now)
}

func (s *PostgresStore) Execute(ctx context.Context, notificationID id.NotificationID, mutate func(*models.Notification) error) (*models.Notification, error) {
	var result *models.Notification
	err := tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Pick(ctx, s.db)
		n, err := scanNotification(q.QueryRowContext(ctx,
			`SELECT `+notificationColumns+` FROM vendor_notifications WHERE id = $1 FOR UPDATE`, notificationID.String()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("lock notification: %w", err)
		}
		if err := mutate(n); err != nil {
			return err
		}
		if err := n.CheckInvariants(); err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `UPDATE vendor_notifications SET
				vendor_id = $2, notification_type = $3, title = $4, message = $5, priority = $6, status = $7,
				read_at = $8, action_required = $9, action_url = $10, action_deadline = $11,
				action_completed = $12, action_completed_at = $13, related_entity_type = $14,
				related_entity_id = $15, created_at = $16, updated_at = $17
			WHERE id = $1`, notificationArgs(n)...)
		if err != nil {
			return fmt.Errorf("update notification: %w", err)
		}
		result = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, vendorID id.VendorID, now time.Time) (int, error) {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `UPDATE vendor_notifications
		SET status = 'READ', read_at = $2, updated_at = $2
		WHERE vendor_id = $1 AND status = 'UNREAD'`, vendorID.String(), now)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all read rows: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) Delete(ctx context.Context, notificationID id.NotificationID) error {
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM vendor_notifications WHERE id = $1`, notificationID.String())
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification rows: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context, vendorID id.VendorID) (*models.Stats, error) {
	stats := &models.Stats{TypeDistribution: map[string]int{}}
	q := tx.Pick(ctx, s.db)
	err := q.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'UNREAD'),
			COUNT(*) FILTER (WHERE status = 'UNREAD' AND priority = 'URGENT'),
			COUNT(*) FILTER (WHERE action_required AND NOT action_completed)
		FROM vendor_notifications WHERE vendor_id = $1 AND status <> 'DELETED'`, vendorID.String()).
		Scan(&stats.Total, &stats.Unread, &stats.UrgentUnread, &stats.PendingActions)
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT notification_type, COUNT(*) FROM vendor_notifications
		WHERE vendor_id = $1 AND status <> 'DELETED' GROUP BY notification_type`, vendorID.String())
	if err != nil {
		return nil, fmt.Errorf("notification type distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan notification type distribution: %w", err)
		}
		stats.TypeDistribution[typ] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification type distribution: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Notification, error) {
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func notificationArgs(n *models.Notification) []any {
	return []any{
		n.ID.String(), n.VendorID.String(), n.Type, n.Title, n.Message, string(n.Priority), string(n.Status),
		n.ReadAt, n.ActionRequired, n.ActionURL, n.ActionDeadline, n.ActionCompleted, n.ActionCompletedAt,
		string(n.Related.Kind), n.Related.ID, n.CreatedAt, n.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n                  models.Notification
		rawID, rawVendorID uuid.UUID
		priority, status   string
		relatedKind        string
		readAt, deadline   sql.NullTime
		completedAt        sql.NullTime
	)
	err := row.Scan(&rawID, &rawVendorID, &n.Type, &n.Title, &n.Message, &priority, &status, &readAt,
		&n.ActionRequired, &n.ActionURL, &deadline, &n.ActionCompleted, &completedAt,
		&relatedKind, &n.Related.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.ID = id.NotificationID(rawID)
	n.VendorID = id.VendorID(rawVendorID)
	n.Priority = models.Priority(priority)
	n.Status = models.Status(status)
	n.Related.Kind = id.EntityKind(relatedKind)
	n.ReadAt = nullTime(readAt)
	n.ActionDeadline = nullTime(deadline)
	n.ActionCompletedAt = nullTime(completedAt)
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return &n, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

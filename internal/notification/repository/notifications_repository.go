package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

const notificationColumns = `id, type, priority, title, message, icon,
	       product_id, product_name, quantity, unit, is_read, created_at`

func (r *MySQLNotificationRepository) Insert(ctx context.Context, n domain.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (type, priority, title, message, icon,
		                           product_id, product_name, quantity, unit, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		string(n.Type), string(n.Priority), n.Title, n.Message, n.Icon,
		n.ProductID, n.ProductName, n.Quantity, n.Unit, n.IsRead,
	)
	if err != nil {
		return 0, errors.NewPersistenceError("inserting notification", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewPersistenceError("getting last insert id", err)
	}

	return lastInsertID, nil
}

// ExistsRecent is the dedup check: whether a notification of this type for
// this product was created within the lookback window. A recency query, not
// a unique constraint; racing sweeps could still double-insert.
//
// The cutoff is computed in SQL so it uses the same clock that populated
// created_at, regardless of the server's session time zone.
func (r *MySQLNotificationRepository) ExistsRecent(ctx context.Context, ntype domain.NotificationType, productID int, within time.Duration) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE type = ? AND product_id = ? AND created_at >= NOW() - INTERVAL ? SECOND
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, string(ntype), productID, int64(within.Seconds())).Scan(&exists); err != nil {
		return false, errors.NewPersistenceError("checking recent notifications", err)
	}

	return exists, nil
}

func (r *MySQLNotificationRepository) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications`, notificationColumns)
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewPersistenceError("querying notifications", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var ntype, priority string
		err := rows.Scan(
			&n.ID, &ntype, &priority, &n.Title, &n.Message, &n.Icon,
			&n.ProductID, &n.ProductName, &n.Quantity, &n.Unit, &n.IsRead, &n.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewPersistenceError("scanning notification row", err)
		}
		n.Type = domain.NotificationType(ntype)
		n.Priority = domain.NotificationPriority(priority)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterating notification rows", err)
	}

	return notifications, nil
}

func (r *MySQLNotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = 0`).Scan(&count)
	if err != nil {
		return 0, errors.NewPersistenceError("counting unread notifications", err)
	}
	return count, nil
}

// MarkAsRead is idempotent: marking an already-read notification succeeds as
// a no-op. Only a missing id is an error.
func (r *MySQLNotificationRepository) MarkAsRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceError("marking notification as read", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		// Unchanged rows also report zero; distinguish from a missing id.
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ?)`, id).Scan(&exists)
		if err != nil {
			return errors.NewPersistenceError("checking notification existence", err)
		}
		if !exists {
			return errors.NewNotFoundError(fmt.Sprintf("notification with id %d not found", id))
		}
	}

	return nil
}

func (r *MySQLNotificationRepository) MarkAllAsRead(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE is_read = 0`); err != nil {
		return errors.NewPersistenceError("marking all notifications as read", err)
	}
	return nil
}

func (r *MySQLNotificationRepository) ClearRead(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE is_read = 1`)
	if err != nil {
		return 0, errors.NewPersistenceError("clearing read notifications", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistenceError("getting rows affected", err)
	}
	return deleted, nil
}

func (r *MySQLNotificationRepository) ClearAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications`)
	if err != nil {
		return 0, errors.NewPersistenceError("clearing notifications", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewPersistenceError("getting rows affected", err)
	}
	return deleted, nil
}

func (r *MySQLNotificationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceError("deleting notification", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("notification with id %d not found", id))
	}

	return nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
)

const notificationColumns = `id, user_id, type, title, message, related_id, related_type,
		is_read, action_required, action_data, created_at`

type MySQLNotificationRepository struct {
	db *sqlx.DB
}

func NewMySQLNotificationRepository(db *sqlx.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

// CreateIfAbsent relies on uq_notifications_dedup. ON DUPLICATE KEY UPDATE
// id = id leaves the existing row untouched and reports zero affected rows.
func (r *MySQLNotificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO notifications (user_id, type, title, message, related_id, related_type,
			is_read, action_required, action_data, created_at, dedup_date)
		VALUES (:user_id, :type, :title, :message, :related_id, :related_type,
			:is_read, :action_required, :action_data, :created_at, :dedup_date)
		ON DUPLICATE KEY UPDATE id = id
	`
	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	n.ID = id
	return true, nil
}

func (r *MySQLNotificationRepository) GetByID(ctx context.Context, notificationID, userID int64) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = ? AND user_id = ?
	`
	var n domain.Notification
	if err := r.db.GetContext(ctx, &n, query, notificationID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// GetByUserID returns the newest notifications first. A limit of zero or
// less returns all of them.
func (r *MySQLNotificationRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead is idempotent. MySQL reports zero affected rows for a row that
// was already read, so a miss is confirmed with a lookup before failing.
func (r *MySQLNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = ? AND user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists int
	err = r.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, notificationID, userID)
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *MySQLNotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = ? AND is_read = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *MySQLNotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND is_read = FALSE
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

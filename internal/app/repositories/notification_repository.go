package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

var notificationColumns = []string{
	"n.id", "n.user_id", "n.kind", "n.title", "n.message", "n.payload", "n.is_read", "n.read_at", "n.created_at",
}

// NotificationRepository handles in-app notifications
type NotificationRepository struct {
	base
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool db.Querier) *NotificationRepository {
	return &NotificationRepository{base: newBase(pool)}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Payload, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	payload := []byte(n.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	sql, args, err := r.sb.Insert("notifications").
		Columns("user_id", "kind", "title", "message", "payload").
		Values(n.UserID, n.Kind, n.Title, n.Message, string(payload)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt)
	return translate(err, nil, nil)
}

// List returns the notifications inside scope, newest first
func (r *NotificationRepository) List(ctx context.Context, scope auth.Scope, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error) {
	where := squirrel.And{}
	if unreadOnly {
		where = append(where, squirrel.Eq{"n.is_read": false})
	}

	total, err := r.count(ctx, scope.Apply(r.sb.Select("COUNT(*)").From("notifications n").Where(conditions(where))), "notifications")
	if err != nil {
		return nil, 0, err
	}

	query := scope.Apply(r.sb.Select(notificationColumns...).From("notifications n").Where(conditions(where))).
		OrderBy("n.created_at DESC", "n.id DESC")
	sql, args, err := paginate(query, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notification row: %w", err)
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

// GetForUser retrieves a notification owned by userID
func (r *NotificationRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).From("notifications n").
		Where(squirrel.Eq{"n.id": id, "n.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notification query: %w", err)
	}

	n, err := scanNotification(r.conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err, apperrors.ErrNotificationNotFound, nil)
	}
	return n, nil
}

// MarkRead sets is_read on an unread notification of userID. It reports
// whether a row changed; an already read notification is left untouched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64, at time.Time) (bool, error) {
	n, err := r.exec(ctx, r.sb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"id": id, "user_id": userID, "is_read": false}), "mark notification read")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAllRead marks every unread notification of userID as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	return r.exec(ctx, r.sb.Update("notifications").
		Set("is_read", true).
		Set("read_at", at).
		Where(squirrel.Eq{"user_id": userID, "is_read": false}), "mark all notifications read")
}

// CountUnread counts the unread notifications of userID
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From("notifications n").
		Where(squirrel.Eq{"n.user_id": userID, "n.is_read": false}), "unread notifications")
}

package domain

import (
	"context"
)

type NotificationRepository interface {
	// CreateIfAbsent inserts n unless a row with the same dedup key exists.
	// It reports whether a row was inserted and sets n.ID when it was.
	CreateIfAbsent(ctx context.Context, n *Notification) (bool, error)
	GetByID(ctx context.Context, notificationID, userID int64) (*Notification, error)
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

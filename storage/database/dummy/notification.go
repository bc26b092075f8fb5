package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = newID()
	return createRow(ctx, repo.db.notifications, n, nil)
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Notification, error) {
	notifications := repo.db.notifications.list(func(n notification.Notification) bool {
		if filter == nil {
			return true
		}
		if filter.Priority != "" && n.Priority != filter.Priority {
			return false
		}
		if filter.UserID != "" && !n.IsFor(filter.UserID, filter.Role) {
			return false
		}
		if filter.Unread && filter.UserID != "" && n.IsReadBy(filter.UserID) {
			return false
		}
		return idIn(filter.IDs, n.ID)
	})
	orderBy(notifications, ordering)
	return notifications, nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	return getRow(repo.db.notifications, id, notification.ErrNotFound)
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id, userID string, at time.Time) (notification.Notification, error) {
	return updateRowFunc(ctx, repo.db.notifications, id, func(n *notification.Notification) error {
		if !n.IsReadBy(userID) {
			n.ReadBy = append(append([]string(nil), n.ReadBy...), userID)
			n.UpdatedAt = at
		}
		return nil
	}, notification.ErrNotFound)
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.notifications, id, notification.ErrNotFound)
}

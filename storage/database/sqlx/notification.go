package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
)

var notificationColumns = []string{
	"id", "title", "message", "priority", "audience", "recipient_ids", "send_email", "read_by", "created_by",
	"created_at", "updated_at",
}

type notificationRow struct {
	notification.Notification
	Audience     pq.StringArray `db:"audience"`
	RecipientIDs pq.StringArray `db:"recipient_ids"`
	ReadBy       pq.StringArray `db:"read_by"`
}

func (r notificationRow) notification() notification.Notification {
	n := r.Notification
	n.Audience = orEmpty(r.Audience)
	n.RecipientIDs = orEmpty(r.RecipientIDs)
	n.ReadBy = orEmpty(r.ReadBy)
	return n
}

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func notificationValues(n notification.Notification) map[string]interface{} {
	return map[string]interface{}{
		"title":         n.Title,
		"message":       n.Message,
		"priority":      n.Priority,
		"audience":      pq.Array(orEmpty(n.Audience)),
		"recipient_ids": pq.Array(orEmpty(n.RecipientIDs)),
		"send_email":    n.SendEmail,
		"read_by":       pq.Array(orEmpty(n.ReadBy)),
		"created_by":    nullable(n.CreatedBy),
		"updated_at":    n.UpdatedAt,
	}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = newID()
	values := notificationValues(n)
	values["id"] = n.ID
	values["created_at"] = n.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("notifications").SetMap(values), "notification", nil); err != nil {
		return notification.Notification{}, err
	}
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter *notification.QueryFilter, ordering []core.DBOrdering) ([]notification.Notification, error) {
	q := psql.Select(notificationColumns...).From("notifications")
	if filter != nil {
		if filter.Priority != "" {
			q = q.Where(sq.Eq{"priority": filter.Priority})
		}
		if filter.UserID != "" {
			q = q.Where(sq.Expr("(? = ANY(recipient_ids) OR ? = ANY(audience))", filter.UserID, filter.Role))
			if filter.Unread {
				q = q.Where(sq.Expr("NOT (? = ANY(read_by))", filter.UserID))
			}
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	var rows []notificationRow
	if err := repo.db.selectAll(ctx, &rows, orderBy(q, ordering), "notification"); err != nil {
		return nil, err
	}
	notifications := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifications = append(notifications, r.notification())
	}
	return notifications, nil
}

func (repo *notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	var r notificationRow
	q := psql.Select(notificationColumns...).From("notifications").Where(sq.Eq{"id": id})
	if err := repo.db.get(ctx, &r, q, "notification", notification.ErrNotFound); err != nil {
		return notification.Notification{}, err
	}
	return r.notification(), nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id, userID string, at time.Time) (notification.Notification, error) {
	q := psql.Update("notifications").
		Set("read_by", sq.Expr("array_append(read_by, ?)", userID)).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("NOT (? = ANY(read_by))", userID))
	if err := repo.db.exec(ctx, q, "notification", nil); err != nil {
		return notification.Notification{}, err
	}
	return repo.GetNotification(ctx, id)
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("notifications").Where(sq.Eq{"id": id}), "notification", notification.ErrNotFound)
}

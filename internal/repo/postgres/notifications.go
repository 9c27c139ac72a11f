package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/observability"
	"github.com/pcelinjak/hivelog/internal/utils"
)

type NotificationsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewNotificationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotificationsRepo {
	return &NotificationsRepo{pool: pool, observer: observer{prom: prom}}
}

const notificationSelect = `SELECT n.id, n.user_id, n.activity_id, n.message, n.seen, n.kind,
		COALESCE(TO_CHAR(n.reminder_day, 'YYYY-MM-DD'), ''), n.created_at,
		a.title, a.type, a.due_at
	FROM notifications n
	LEFT JOIN activities a ON a.id = n.activity_id`

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var (
		n        notification.Notification
		title    *string
		kindType *string
		dueAt    *time.Time
	)

	err := row.Scan(&n.ID, &n.UserID, &n.ActivityID, &n.Message, &n.Seen, &n.Kind, &n.ReminderDay, &n.CreatedAt,
		&title, &kindType, &dueAt)
	if err != nil {
		return notification.Notification{}, err
	}

	if title != nil && kindType != nil && dueAt != nil {
		n.Activity = &notification.ActivityRef{Title: *title, Type: *kindType, StartDate: *dueAt}
	}
	return n, nil
}

func (r *NotificationsRepo) list(ctx context.Context, op, query string, args ...any) ([]notification.Notification, error) {
	output := make([]notification.Notification, 0)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			n, err := scanNotification(rows)
			if err != nil {
				return err
			}
			output = append(output, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *NotificationsRepo) ReminderExists(ctx context.Context, userID, activityID int64, since time.Time) (bool, error) {
	var exists bool

	err := r.observe("notifications.reminder_exists", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND activity_id = $2 AND created_at >= $3
		)`, userID, activityID, since).Scan(&exists)
	})

	return exists, err
}

// CreateReminder relies on notifications_reminder_uq; a concurrent duplicate inserts nothing.
func (r *NotificationsRepo) CreateReminder(ctx context.Context, n notification.Notification) (bool, error) {
	var created bool

	err := r.observe("notifications.create_reminder", func() error {
		tag, err := r.pool.Exec(ctx,
			`INSERT INTO notifications (user_id, activity_id, message, kind, reminder_day)
			VALUES ($1, $2, $3, $4, $5::date)
			ON CONFLICT (user_id, activity_id, reminder_day) WHERE reminder_day IS NOT NULL DO NOTHING`,
			n.UserID, n.ActivityID, n.Message, n.Kind, n.ReminderDay,
		)
		if err != nil {
			return err
		}
		created = tag.RowsAffected() == 1
		return nil
	})

	return created, err
}

func (r *NotificationsRepo) Broadcast(ctx context.Context, userIDs []int64, message string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var n int64

	err := r.observe("notifications.broadcast", func() error {
		tag, err := r.pool.Exec(ctx,
			`INSERT INTO notifications (user_id, message, kind)
			SELECT uid, $2, $3 FROM UNNEST($1::bigint[]) AS uid`,
			userIDs, message, notification.KindBroadcast,
		)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})

	return int(n), err
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID int64, limit int, after *utils.NotificationCursor) ([]notification.Notification, error) {
	if after == nil {
		return r.list(ctx, "notifications.list_by_user",
			notificationSelect+` WHERE n.user_id = $1 ORDER BY n.created_at DESC, n.id DESC LIMIT $2`,
			userID, limit)
	}

	return r.list(ctx, "notifications.list_by_user",
		notificationSelect+` WHERE n.user_id = $1 AND (n.created_at, n.id) < ($2, $3)
		ORDER BY n.created_at DESC, n.id DESC LIMIT $4`,
		userID, after.CreatedAt, after.ID, limit)
}

func (r *NotificationsRepo) ListUnseen(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return r.list(ctx, "notifications.list_unseen",
		notificationSelect+` WHERE n.user_id = $1 AND NOT n.seen ORDER BY n.created_at DESC, n.id DESC`,
		userID)
}

func (r *NotificationsRepo) MarkSeen(ctx context.Context, userID, id int64) error {
	return r.observe("notifications.mark_seen", func() error {
		_, err := r.pool.Exec(ctx, `UPDATE notifications SET seen = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})
}

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/utils"
)

type NotificationsRepo struct {
	s *Store
}

func (r *NotificationsRepo) ReminderExists(_ context.Context, userID, activityID int64, since time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, n := range r.s.notifications {
		if n.UserID == userID && n.ActivityID != nil && *n.ActivityID == activityID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// CreateReminder enforces one reminder per (user, activity, day).
func (r *NotificationsRepo) CreateReminder(_ context.Context, n notification.Notification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n.ReminderDay != "" && n.ActivityID != nil {
		for _, cur := range r.s.notifications {
			if cur.UserID == n.UserID &&
				cur.ActivityID != nil && *cur.ActivityID == *n.ActivityID &&
				cur.ReminderDay == n.ReminderDay {
				return false, nil
			}
		}
	}

	r.s.insertNotificationLocked(n)
	return true, nil
}

// Broadcast creates one notification per recipient and returns how many were created.
func (r *NotificationsRepo) Broadcast(_ context.Context, userIDs []int64, message string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range userIDs {
		r.s.insertNotificationLocked(notification.Notification{
			UserID:  id,
			Message: message,
			Kind:    notification.KindBroadcast,
		})
	}
	return len(userIDs), nil
}

// ListByUser pages newest first. after is the last item of the previous page.
func (r *NotificationsRepo) ListByUser(_ context.Context, userID int64, limit int, after *utils.NotificationCursor) ([]notification.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.userNotificationsLocked(userID, func(n notification.Notification) bool {
		if after == nil {
			return true
		}
		if n.CreatedAt.Before(after.CreatedAt) {
			return true
		}
		return n.CreatedAt.Equal(after.CreatedAt) && n.ID < after.ID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *NotificationsRepo) ListUnseen(_ context.Context, userID int64) ([]notification.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.userNotificationsLocked(userID, func(n notification.Notification) bool { return !n.Seen }), nil
}

// MarkSeen only touches the caller's own notification.
func (r *NotificationsRepo) MarkSeen(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if ok && n.UserID == userID {
		n.Seen = true
		r.s.notifications[id] = n
	}
	return nil
}

func (s *Store) insertNotificationLocked(n notification.Notification) {
	n.ID = s.nextID()
	n.CreatedAt = s.now().UTC()
	n.Seen = false
	n.Activity = nil
	s.notifications[n.ID] = n
}

func (s *Store) userNotificationsLocked(userID int64, keep func(notification.Notification) bool) []notification.Notification {
	out := make([]notification.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID || !keep(n) {
			continue
		}
		if n.ActivityID != nil {
			if a, ok := s.activities[*n.ActivityID]; ok {
				n.Activity = &notification.ActivityRef{Title: a.Title, Type: a.Type, StartDate: a.DueAt}
			}
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/comment"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, email string, role user.Role) user.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), user.NewUser{Name: "N", Email: email, PasswordHash: "h", Role: role})
	require.NoError(t, err)
	return u
}

func TestUsers_EmailUniqueCaseInsensitive(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "a@b.com", user.RoleUser)

	_, err := s.Users().Create(context.Background(), user.NewUser{Email: "A@B.com", Role: user.RoleUser})
	require.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = s.Users().GetByEmail(context.Background(), "nobody@b.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsers_ListIDsByRole(t *testing.T) {
	s := NewStore()
	a := seedUser(t, s, "a@b.com", user.RoleUser)
	seedUser(t, s, "m@b.com", user.RoleManager)
	c := seedUser(t, s, "c@b.com", user.RoleUser)

	ids, err := s.Users().ListIDsByRole(context.Background(), user.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, c.ID}, ids)
}

func TestHives_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u := seedUser(t, s, "a@b.com", user.RoleUser)

	h, err := s.Hives().Create(ctx, hive.Hive{UserID: u.ID, Name: "H", BeeCount: 1, Strength: hive.StrengthWeak, FrameCount: 1})
	require.NoError(t, err)

	a, err := s.Activities().Create(ctx, activity.Activity{UserID: u.ID, HiveID: h.ID, Title: "t", Type: "x", DueAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "H", a.HiveName)

	_, err = s.Comments().Create(ctx, comment.Comment{UserID: u.ID, HiveID: h.ID, Content: "c", HiveStrength: "SLABA"})
	require.NoError(t, err)

	aid := a.ID
	ok, err := s.Notifications().CreateReminder(ctx, notification.Notification{UserID: u.ID, ActivityID: &aid, Message: "m", Kind: notification.KindReminder, ReminderDay: "2024-05-10"})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Hives().Delete(ctx, h.ID))

	_, err = s.Activities().GetByID(ctx, a.ID)
	require.ErrorIs(t, err, activity.ErrNotFound)

	cs, err := s.Comments().ListByHive(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, cs)

	ns, err := s.Notifications().ListUnseen(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Nil(t, ns[0].ActivityID)
}

func TestActivities_CreateRequiresHive(t *testing.T) {
	s := NewStore()
	_, err := s.Activities().Create(context.Background(), activity.Activity{UserID: 1, HiveID: 99})
	require.ErrorIs(t, err, hive.ErrNotFound)
}

func TestNotifications_ReminderUniquePerDay(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	aid := int64(5)
	n := notification.Notification{UserID: 1, ActivityID: &aid, Message: "m", Kind: notification.KindReminder, ReminderDay: "2024-05-10"}

	ok, err := s.Notifications().CreateReminder(ctx, n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Notifications().CreateReminder(ctx, n)
	require.NoError(t, err)
	assert.False(t, ok)

	n.ReminderDay = "2024-05-11"
	ok, err = s.Notifications().CreateReminder(ctx, n)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNotifications_PagingAndSeen(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		_, err := s.Notifications().Broadcast(ctx, []int64{1, 2}, "hello")
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}

	page, err := s.Notifications().ListByUser(ctx, 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	last := page[1]
	rest, err := s.Notifications().ListByUser(ctx, 1, 2, &utils.NotificationCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	require.NoError(t, err)
	require.Len(t, rest, 1)

	// user 2 cannot mark user 1's notification
	require.NoError(t, s.Notifications().MarkSeen(ctx, 2, rest[0].ID))
	unseen, err := s.Notifications().ListUnseen(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, unseen, 3)

	require.NoError(t, s.Notifications().MarkSeen(ctx, 1, rest[0].ID))
	unseen, err = s.Notifications().ListUnseen(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, unseen, 2)
}

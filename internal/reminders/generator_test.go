package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/repo/memory"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var belgrade = time.FixedZone("CET", 3600)

type fixture struct {
	store  *memory.Store
	userID int64
	hiveID int64
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	now := time.Date(2024, 5, 10, 9, 0, 0, 0, belgrade)
	s := memory.NewStore()
	s.SetClock(func() time.Time { return now })

	u, err := s.Users().Create(ctx, user.NewUser{Name: "U", Email: "u@x.rs", PasswordHash: "h", Role: user.RoleUser})
	require.NoError(t, err)

	h, err := s.Hives().Create(ctx, hive.Hive{UserID: u.ID, Name: "Kosnica 1", BeeCount: 10000, Strength: hive.StrengthStrong, FrameCount: 10})
	require.NoError(t, err)

	return &fixture{store: s, userID: u.ID, hiveID: h.ID, now: now}
}

func (f *fixture) addActivity(t *testing.T, title string, due time.Time, done bool) activity.Activity {
	t.Helper()
	a, err := f.store.Activities().Create(context.Background(), activity.Activity{
		UserID: f.userID, HiveID: f.hiveID, Title: title, Type: "Pregled", Description: "d", DueAt: due, Done: done,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) generator(opts ...Option) *Generator {
	opts = append([]Option{
		WithClock(func() time.Time { return f.now }),
		WithLocation(belgrade),
	}, opts...)
	return NewGenerator(f.store.Activities(), f.store.Notifications(), opts...)
}

func (f *fixture) reminders(t *testing.T) []notification.Notification {
	t.Helper()
	ns, err := f.store.Notifications().ListByUser(context.Background(), f.userID, 0, nil)
	require.NoError(t, err)
	return ns
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC) // 00:30 next day in CET

	start, end := DayBounds(now, belgrade)

	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, belgrade), start)
	assert.Equal(t, time.Date(2024, 5, 11, 23, 59, 59, 999999999, belgrade), end)
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t)
	a := f.addActivity(t, "Prolecni pregled", f.now.Add(3*time.Hour), false)
	g := f.generator()

	n, err := g.Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = g.Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ns := f.reminders(t)
	require.Len(t, ns, 1)
	require.NotNil(t, ns[0].ActivityID)
	assert.Equal(t, a.ID, *ns[0].ActivityID)
	assert.Equal(t, notification.KindReminder, ns[0].Kind)
	assert.Equal(t, notification.ReminderMessage("Prolecni pregled", "Pregled"), ns[0].Message)
	assert.Equal(t, "2024-05-10", ns[0].ReminderDay)
}

func TestRun_SkipsDoneAndOtherDays(t *testing.T) {
	f := newFixture(t)
	f.addActivity(t, "done today", f.now.Add(time.Hour), true)
	f.addActivity(t, "tomorrow", f.now.Add(24*time.Hour), false)
	f.addActivity(t, "yesterday", f.now.Add(-24*time.Hour), false)

	n, err := f.generator().Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, f.reminders(t))
}

func TestRun_EdgesOfDayCount(t *testing.T) {
	f := newFixture(t)
	start, end := DayBounds(f.now, belgrade)
	f.addActivity(t, "midnight", start, false)
	f.addActivity(t, "last instant", end, false)

	n, err := f.generator().Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_NextDayCreatesAgain(t *testing.T) {
	f := newFixture(t)
	a := f.addActivity(t, "multi day", f.now, false)

	_, err := f.generator().Run(context.Background(), f.userID)
	require.NoError(t, err)

	// the activity moves to tomorrow and the clock follows it
	a.DueAt = f.now.Add(24 * time.Hour)
	_, err = f.store.Activities().Update(context.Background(), a)
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	f.store.SetClock(func() time.Time { return f.now })

	n, err := f.generator().Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.reminders(t), 2)
}

type failingSource struct{}

func (failingSource) ListDueBetween(context.Context, int64, time.Time, time.Time) ([]activity.Activity, error) {
	return nil, errors.New("db down")
}

func TestRun_PropagatesErrors(t *testing.T) {
	f := newFixture(t)
	g := NewGenerator(failingSource{}, f.store.Notifications())

	_, err := g.Run(context.Background(), f.userID)
	require.Error(t, err)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRun_SkipsWhenLockHeld(t *testing.T) {
	f := newFixture(t)
	f.addActivity(t, "today", f.now.Add(time.Hour), false)

	locker := NewRedisLocker(newRedis(t))
	release, ok, err := locker.Acquire(context.Background(), lockKey(f.userID, "2024-05-10"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := f.generator(WithLocker(locker)).Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, f.reminders(t))

	release()

	n, err = f.generator(WithLocker(locker)).Run(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisLocker_ReleaseOnlyOwnToken(t *testing.T) {
	rdb := newRedis(t)
	locker := NewRedisLocker(rdb)
	ctx := context.Background()

	release, ok, err := locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// someone else took over after expiry
	require.NoError(t, rdb.Set(ctx, "k", "other", time.Minute).Err())
	release()

	v, err := rdb.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "other", v)
}

package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/observability"
)

// DayLayout keys a reminder to its calendar day.
const DayLayout = "2006-01-02"

// ActivitySource lists a user's incomplete activities due in [from, to].
type ActivitySource interface {
	ListDueBetween(ctx context.Context, userID int64, from, to time.Time) ([]activity.Activity, error)
}

type ReminderStore interface {
	ReminderExists(ctx context.Context, userID, activityID int64, since time.Time) (bool, error)
	// CreateReminder inserts unless a reminder for (user, activity, day) exists.
	// It reports whether a row was created.
	CreateReminder(ctx context.Context, n notification.Notification) (bool, error)
}

type Generator struct {
	activities ActivitySource
	store      ReminderStore
	locker     Locker
	loc        *time.Location
	now        func() time.Time
	lockTTL    time.Duration
	log        *slog.Logger
	prom       *observability.Prom
}

type Option func(*Generator)

func WithLocker(l Locker) Option {
	return func(g *Generator) {
		if l != nil {
			g.locker = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

func WithMetrics(p *observability.Prom) Option {
	return func(g *Generator) { g.prom = p }
}

func NewGenerator(activities ActivitySource, store ReminderStore, opts ...Option) *Generator {
	g := &Generator{
		activities: activities,
		store:      store,
		locker:     NoopLocker{},
		loc:        time.Local,
		now:        time.Now,
		lockTTL:    10 * time.Second,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DayBounds returns the first and last instant of the calendar day containing now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return start, end
}

// Run creates at most one reminder per incomplete activity due today.
// It returns how many reminders were created by this call.
func (g *Generator) Run(ctx context.Context, userID int64) (int, error) {
	start, end := DayBounds(g.now(), g.loc)
	day := start.Format(DayLayout)

	release, ok, err := g.locker.Acquire(ctx, lockKey(userID, day), g.lockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire reminder lock: %w", err)
	}
	if !ok {
		g.log.DebugContext(ctx, "reminder sweep already running", "user_id", userID, "day", day)
		return 0, nil
	}
	defer release()

	due, err := g.activities.ListDueBetween(ctx, userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("list due activities: %w", err)
	}

	created := 0
	for _, a := range due {
		if a.Done {
			continue
		}

		exists, err := g.store.ReminderExists(ctx, userID, a.ID, start)
		if err != nil {
			return created, fmt.Errorf("check reminder for activity %d: %w", a.ID, err)
		}
		if exists {
			continue
		}

		activityID := a.ID
		ok, err := g.store.CreateReminder(ctx, notification.Notification{
			UserID:      userID,
			ActivityID:  &activityID,
			Message:     notification.ReminderMessage(a.Title, a.Type),
			Kind:        notification.KindReminder,
			ReminderDay: day,
		})
		if err != nil {
			return created, fmt.Errorf("create reminder for activity %d: %w", a.ID, err)
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		g.prom.AddReminders(created)
		g.log.InfoContext(ctx, "reminders created", "user_id", userID, "day", day, "count", created)
	}

	return created, nil
}

func lockKey(userID int64, day string) string {
	return "hivelog:reminders:" + strconv.FormatInt(userID, 10) + ":" + day
}

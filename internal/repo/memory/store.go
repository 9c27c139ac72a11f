package memory

import (
	"sync"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/comment"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/domain/notification"
	"github.com/pcelinjak/hivelog/internal/domain/user"
)

// Store keeps every table in process behind one lock, so cascades
// and uniqueness checks are atomic the same way they are in Postgres.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	seq           int64
	users         map[int64]user.User
	hives         map[int64]hive.Hive
	activities    map[int64]activity.Activity
	comments      map[int64]comment.Comment
	notifications map[int64]notification.Notification
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[int64]user.User),
		hives:         make(map[int64]hive.Hive),
		activities:    make(map[int64]activity.Activity),
		comments:      make(map[int64]comment.Comment),
		notifications: make(map[int64]notification.Notification),
	}
}

// SetClock is for tests that need deterministic timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// nextID must be called with mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Users() *UsersRepo                 { return &UsersRepo{s: s} }
func (s *Store) Hives() *HivesRepo                 { return &HivesRepo{s: s} }
func (s *Store) Activities() *ActivitiesRepo       { return &ActivitiesRepo{s: s} }
func (s *Store) Comments() *CommentsRepo           { return &CommentsRepo{s: s} }
func (s *Store) Notifications() *NotificationsRepo { return &NotificationsRepo{s: s} }

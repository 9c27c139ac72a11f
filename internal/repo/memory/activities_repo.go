package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
)

type ActivitiesRepo struct {
	s *Store
}

// Create fails with hive.ErrNotFound when the hive does not exist.
func (r *ActivitiesRepo) Create(_ context.Context, a activity.Activity) (activity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.hives[a.HiveID]
	if !ok {
		return activity.Activity{}, hive.ErrNotFound
	}

	now := r.s.now().UTC()
	a.ID = r.s.nextID()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.HiveName = ""
	r.s.activities[a.ID] = a

	a.HiveName = h.Name
	return a, nil
}

// ListByUser returns the user's activities by due date, newest first, with hive names.
func (r *ActivitiesRepo) ListByUser(_ context.Context, userID int64) ([]activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.filterActivities(func(a activity.Activity) bool { return a.UserID == userID }, true), nil
}

func (r *ActivitiesRepo) ListByHive(_ context.Context, hiveID int64) ([]activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.filterActivities(func(a activity.Activity) bool { return a.HiveID == hiveID }, true), nil
}

func (r *ActivitiesRepo) ListDueBetween(_ context.Context, userID int64, from, to time.Time) ([]activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.s.filterActivities(func(a activity.Activity) bool {
		return a.UserID == userID && !a.Done && !a.DueAt.Before(from) && !a.DueAt.After(to)
	}, false)

	return out, nil
}

func (r *ActivitiesRepo) GetByID(_ context.Context, id int64) (activity.Activity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.activities[id]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	a.HiveName = r.s.hives[a.HiveID].Name
	return a, nil
}

func (r *ActivitiesRepo) Update(_ context.Context, a activity.Activity) (activity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.activities[a.ID]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}

	cur.Title = a.Title
	cur.Type = a.Type
	cur.Description = a.Description
	cur.DueAt = a.DueAt
	cur.Done = a.Done
	cur.UpdatedAt = r.s.now().UTC()
	r.s.activities[a.ID] = cur

	cur.HiveName = r.s.hives[cur.HiveID].Name
	return cur, nil
}

func (r *ActivitiesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.activities[id]; !ok {
		return activity.ErrNotFound
	}
	r.s.deleteActivityLocked(id)

	return nil
}

func (r *ActivitiesRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, a := range r.s.activities {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

// deleteActivityLocked detaches notifications like ON DELETE SET NULL.
func (s *Store) deleteActivityLocked(id int64) {
	delete(s.activities, id)

	for nid, n := range s.notifications {
		if n.ActivityID != nil && *n.ActivityID == id {
			n.ActivityID = nil
			s.notifications[nid] = n
		}
	}
}

func (s *Store) filterActivities(keep func(activity.Activity) bool, newestFirst bool) []activity.Activity {
	out := make([]activity.Activity, 0)
	for _, a := range s.activities {
		if keep(a) {
			a.HiveName = s.hives[a.HiveID].Name
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			if newestFirst {
				return out[i].DueAt.After(out[j].DueAt)
			}
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

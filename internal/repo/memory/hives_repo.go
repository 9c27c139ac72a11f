package memory

import (
	"context"
	"sort"

	"github.com/pcelinjak/hivelog/internal/domain/hive"
)

type HivesRepo struct {
	s *Store
}

func (r *HivesRepo) Create(_ context.Context, h hive.Hive) (hive.Hive, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now().UTC()
	h.ID = r.s.nextID()
	h.CreatedAt = now
	h.UpdatedAt = now
	h.Activities = nil
	r.s.hives[h.ID] = h

	return h, nil
}

// ListByUser returns newest first.
func (r *HivesRepo) ListByUser(_ context.Context, userID int64) ([]hive.Hive, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]hive.Hive, 0)
	for _, h := range r.s.hives {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *HivesRepo) GetByID(_ context.Context, id int64) (hive.Hive, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.hives[id]
	if !ok {
		return hive.Hive{}, hive.ErrNotFound
	}
	return h, nil
}

func (r *HivesRepo) Update(_ context.Context, h hive.Hive) (hive.Hive, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.hives[h.ID]
	if !ok {
		return hive.Hive{}, hive.ErrNotFound
	}

	cur.Name = h.Name
	cur.BeeCount = h.BeeCount
	cur.Strength = h.Strength
	cur.FrameCount = h.FrameCount
	cur.UpdatedAt = r.s.now().UTC()
	r.s.hives[h.ID] = cur

	return cur, nil
}

// Delete cascades to the hive's activities and comments.
func (r *HivesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.hives[id]; !ok {
		return hive.ErrNotFound
	}
	delete(r.s.hives, id)

	for aid, a := range r.s.activities {
		if a.HiveID == id {
			r.s.deleteActivityLocked(aid)
		}
	}
	for cid, c := range r.s.comments {
		if c.HiveID == id {
			delete(r.s.comments, cid)
		}
	}

	return nil
}

func (r *HivesRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, h := range r.s.hives {
		if h.UserID == userID {
			n++
		}
	}
	return n, nil
}

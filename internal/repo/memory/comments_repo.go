package memory

import (
	"context"
	"sort"

	"github.com/pcelinjak/hivelog/internal/domain/comment"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
)

type CommentsRepo struct {
	s *Store
}

func (r *CommentsRepo) Create(_ context.Context, c comment.Comment) (comment.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.hives[c.HiveID]; !ok {
		return comment.Comment{}, hive.ErrNotFound
	}

	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now().UTC()
	c.Author = nil
	r.s.comments[c.ID] = c

	return r.s.withAuthor(c), nil
}

// ListByHive returns comments newest first with their authors.
func (r *CommentsRepo) ListByHive(_ context.Context, hiveID int64) ([]comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]comment.Comment, 0)
	for _, c := range r.s.comments {
		if c.HiveID == hiveID {
			out = append(out, r.s.withAuthor(c))
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

func (r *CommentsRepo) GetByID(_ context.Context, id int64) (comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	return r.s.withAuthor(c), nil
}

func (r *CommentsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return comment.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (s *Store) withAuthor(c comment.Comment) comment.Comment {
	if u, ok := s.users[c.UserID]; ok {
		c.Author = &comment.Author{Name: u.Name, Email: u.Email}
	}
	return c
}

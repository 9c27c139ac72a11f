package cache

import (
	"context"
	"time"

	"github.com/pcelinjak/hivelog/internal/domain/user"
	"github.com/pcelinjak/hivelog/internal/utils"
)

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// UserSummaries caches public user summaries by id. Users are never
// edited after registration, so entries only expire.
type UserSummaries struct {
	users UserGetter
	c     *Cache
}

func NewUserSummaries(users UserGetter, ttl time.Duration) *UserSummaries {
	return &UserSummaries{users: users, c: New(ttl)}
}

func (s *UserSummaries) Get(ctx context.Context, id int64) (user.Summary, error) {
	key := utils.BuildUserCacheKey(id)

	if v, ok := s.c.Get(key); ok {
		if sum, ok := v.(user.Summary); ok {
			return sum, nil
		}
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.Summary{}, err
	}

	sum := u.Summary()
	s.c.Set(key, sum)
	return sum, nil
}

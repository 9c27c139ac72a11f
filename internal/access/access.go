package access

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/domain"
	"github.com/pcelinjak/hivelog/internal/domain/user"
)

var ErrForbidden = errors.New("forbidden")

// Authorize allows the caller iff their role is one of allowed.
func Authorize(id auth.Identity, allowed ...user.Role) error {
	if slices.Contains(allowed, id.Role) {
		return nil
	}
	return fmt.Errorf("%w: role %s", ErrForbidden, id.Role)
}

// Owned is any record with a single owning user.
type Owned interface {
	OwnerID() int64
}

// NotFoundError hides whether a record is absent or belongs to someone else.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return domain.ErrNotFound
}

// RequireOwner loads a record and returns it only when callerID owns it.
// A load error that is a not-found becomes *NotFoundError; other errors pass through.
func RequireOwner[T Owned](ctx context.Context, entity string, id, callerID int64, load func(context.Context, int64) (T, error)) (T, error) {
	var zero T

	rec, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return zero, &NotFoundError{Entity: entity, ID: id}
		}
		return zero, err
	}

	if rec.OwnerID() != callerID {
		return zero, &NotFoundError{Entity: entity, ID: id}
	}

	return rec, nil
}

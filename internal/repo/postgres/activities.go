package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcelinjak/hivelog/internal/domain/activity"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/observability"
)

type ActivitiesRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewActivitiesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ActivitiesRepo {
	return &ActivitiesRepo{pool: pool, observer: observer{prom: prom}}
}

const activitySelect = `SELECT a.id, a.user_id, a.hive_id, h.name, a.title, a.type, a.description,
		a.due_at, a.done, a.created_at, a.updated_at
	FROM activities a
	JOIN hives h ON h.id = a.hive_id`

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var a activity.Activity
	err := row.Scan(&a.ID, &a.UserID, &a.HiveID, &a.HiveName, &a.Title, &a.Type, &a.Description,
		&a.DueAt, &a.Done, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *ActivitiesRepo) list(ctx context.Context, op, query string, args ...any) ([]activity.Activity, error) {
	output := make([]activity.Activity, 0)

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanActivity(rows)
			if err != nil {
				return err
			}
			output = append(output, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ActivitiesRepo) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	var id int64

	err := r.observe("activities.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO activities (user_id, hive_id, title, type, description, due_at, done)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			a.UserID, a.HiveID, a.Title, a.Type, a.Description, a.DueAt, a.Done,
		).Scan(&id)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return activity.Activity{}, hive.ErrNotFound
		}
		return activity.Activity{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *ActivitiesRepo) ListByUser(ctx context.Context, userID int64) ([]activity.Activity, error) {
	return r.list(ctx, "activities.list_by_user",
		activitySelect+` WHERE a.user_id = $1 ORDER BY a.due_at DESC, a.id ASC`, userID)
}

func (r *ActivitiesRepo) ListByHive(ctx context.Context, hiveID int64) ([]activity.Activity, error) {
	return r.list(ctx, "activities.list_by_hive",
		activitySelect+` WHERE a.hive_id = $1 ORDER BY a.due_at DESC, a.id ASC`, hiveID)
}

func (r *ActivitiesRepo) ListDueBetween(ctx context.Context, userID int64, from, to time.Time) ([]activity.Activity, error) {
	return r.list(ctx, "activities.list_due_between",
		activitySelect+` WHERE a.user_id = $1 AND NOT a.done AND a.due_at BETWEEN $2 AND $3
		ORDER BY a.due_at ASC, a.id ASC`, userID, from, to)
}

func (r *ActivitiesRepo) GetByID(ctx context.Context, id int64) (activity.Activity, error) {
	var a activity.Activity

	err := r.observe("activities.get_by_id", func() error {
		var err error
		a, err = scanActivity(r.pool.QueryRow(ctx, activitySelect+` WHERE a.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, err
	}
	return a, nil
}

func (r *ActivitiesRepo) Update(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	err := r.observe("activities.update", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE activities
				SET title = $2,
					type = $3,
					description = $4,
					due_at = $5,
					done = $6,
					updated_at = NOW()
			WHERE id = $1`,
			a.ID, a.Title, a.Type, a.Description, a.DueAt, a.Done,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return activity.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return activity.Activity{}, err
	}

	return r.GetByID(ctx, a.ID)
}

func (r *ActivitiesRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("activities.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return activity.ErrNotFound
		}
		return nil
	})
}

func (r *ActivitiesRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.observe("activities.count_by_user", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities WHERE user_id = $1`, userID).Scan(&n)
	})
	return n, err
}

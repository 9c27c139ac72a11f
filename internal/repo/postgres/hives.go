package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/observability"
)

type HivesRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewHivesRepo(pool *pgxpool.Pool, prom *observability.Prom) *HivesRepo {
	return &HivesRepo{pool: pool, observer: observer{prom: prom}}
}

const hiveColumns = `id, user_id, name, bee_count, strength, frame_count, created_at, updated_at`

func scanHive(row pgx.Row) (hive.Hive, error) {
	var h hive.Hive
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.BeeCount, &h.Strength, &h.FrameCount, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *HivesRepo) Create(ctx context.Context, h hive.Hive) (hive.Hive, error) {
	var out hive.Hive

	err := r.observe("hives.create", func() error {
		var err error
		out, err = scanHive(r.pool.QueryRow(ctx,
			`INSERT INTO hives (user_id, name, bee_count, strength, frame_count)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+hiveColumns,
			h.UserID, h.Name, h.BeeCount, h.Strength, h.FrameCount,
		))
		return err
	})
	if err != nil {
		return hive.Hive{}, err
	}

	return out, nil
}

func (r *HivesRepo) ListByUser(ctx context.Context, userID int64) ([]hive.Hive, error) {
	output := make([]hive.Hive, 0)

	err := r.observe("hives.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+hiveColumns+` FROM hives WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			h, err := scanHive(rows)
			if err != nil {
				return err
			}
			output = append(output, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *HivesRepo) GetByID(ctx context.Context, id int64) (hive.Hive, error) {
	var h hive.Hive

	err := r.observe("hives.get_by_id", func() error {
		var err error
		h, err = scanHive(r.pool.QueryRow(ctx, `SELECT `+hiveColumns+` FROM hives WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hive.Hive{}, hive.ErrNotFound
		}
		return hive.Hive{}, err
	}
	return h, nil
}

func (r *HivesRepo) Update(ctx context.Context, h hive.Hive) (hive.Hive, error) {
	var out hive.Hive

	err := r.observe("hives.update", func() error {
		var err error
		out, err = scanHive(r.pool.QueryRow(ctx,
			`UPDATE hives
				SET name = $2,
					bee_count = $3,
					strength = $4,
					frame_count = $5,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+hiveColumns,
			h.ID, h.Name, h.BeeCount, h.Strength, h.FrameCount,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hive.Hive{}, hive.ErrNotFound
		}
		return hive.Hive{}, err
	}
	return out, nil
}

// Delete cascades to activities and comments through foreign keys.
func (r *HivesRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("hives.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM hives WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return hive.ErrNotFound
		}
		return nil
	})
}

func (r *HivesRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.observe("hives.count_by_user", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hives WHERE user_id = $1`, userID).Scan(&n)
	})
	return n, err
}

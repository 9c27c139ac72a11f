package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pcelinjak/hivelog/internal/domain/comment"
	"github.com/pcelinjak/hivelog/internal/domain/hive"
	"github.com/pcelinjak/hivelog/internal/observability"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
	observer
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{pool: pool, observer: observer{prom: prom}}
}

const commentSelect = `SELECT c.id, c.user_id, c.hive_id, c.content, c.hive_strength, c.created_at, u.name, u.email
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(row pgx.Row) (comment.Comment, error) {
	var c comment.Comment
	var author comment.Author
	err := row.Scan(&c.ID, &c.UserID, &c.HiveID, &c.Content, &c.HiveStrength, &c.CreatedAt, &author.Name, &author.Email)
	c.Author = &author
	return c, err
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	var id int64

	err := r.observe("comments.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO comments (user_id, hive_id, content, hive_strength)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			c.UserID, c.HiveID, c.Content, c.HiveStrength,
		).Scan(&id)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return comment.Comment{}, hive.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return r.GetByID(ctx, id)
}

func (r *CommentsRepo) ListByHive(ctx context.Context, hiveID int64) ([]comment.Comment, error) {
	output := make([]comment.Comment, 0)

	err := r.observe("comments.list_by_hive", func() error {
		rows, err := r.pool.Query(ctx, commentSelect+` WHERE c.hive_id = $1 ORDER BY c.created_at DESC, c.id DESC`, hiveID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanComment(rows)
			if err != nil {
				return err
			}
			output = append(output, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id int64) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.get_by_id", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}
	return c, nil
}

func (r *CommentsRepo) Delete(ctx context.Context, id int64) error {
	return r.observe("comments.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return comment.ErrNotFound
		}
		return nil
	})
}

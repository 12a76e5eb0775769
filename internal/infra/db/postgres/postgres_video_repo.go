package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
)

var _ repository.VideoRepository = (*videoRepo)(nil)

type videoRepo struct{ pool *pgxpool.Pool }

func NewVideoRepo(pool *pgxpool.Pool) *videoRepo {
	return &videoRepo{pool: pool}
}

const videoColumns = `id, title, category, price, video_url, thumbnail, duration, sort_order, views, is_active, created_at`

func scanVideo(row pgx.Row) (*model.Video, error) {
	v := &model.Video{}
	err := row.Scan(&v.ID, &v.Title, &v.Category, &v.Price, &v.VideoURL, &v.Thumbnail, &v.Duration, &v.SortOrder, &v.Views, &v.IsActive, &v.CreatedAt)
	if err != nil {
		return nil, scanErr(err)
	}
	return v, nil
}

func (r *videoRepo) Save(ctx context.Context, tx repository.Tx, v *model.Video) error {
	const q = `
INSERT INTO videos (` + videoColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  title=$2, category=$3, price=$4, video_url=$5, thumbnail=$6, duration=$7, sort_order=$8, is_active=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, v.ID, v.Title, v.Category, v.Price, v.VideoURL, v.Thumbnail, v.Duration, v.SortOrder, v.Views, v.IsActive, v.CreatedAt)
	if err != nil {
		return writeErr(err)
	}
	return nil
}

func (r *videoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Video, error) {
	const q = `SELECT ` + videoColumns + ` FROM videos WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanVideo(row)
}

func (r *videoRepo) ListActive(ctx context.Context, tx repository.Tx, category string) ([]*model.Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos WHERE is_active`
	args := []interface{}{}
	if category != "" {
		q += ` AND category=$1`
		args = append(args, category)
	}
	q += ` ORDER BY sort_order ASC, created_at DESC;`

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// IncrementViews is a database-side counter bump.
func (r *videoRepo) IncrementViews(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE videos SET views = views + 1 WHERE id=$1;`, id)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

const blogColumns = `
	id, title, content, thumbnail_url, status, categories, author_name,
	author_email, created_at, updated_at
`

func (r *BlogRepository) Create(ctx context.Context, b *entity.Blog) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blogs (title, content, thumbnail_url, status, categories, author_name, author_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, b.Title, b.Content, b.ThumbnailURL, string(b.Status), b.Categories, b.AuthorName, b.AuthorEmail)

	return row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+blogColumns+`
		FROM blogs
		WHERE id = $1
	`, id)

	b, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BlogRepository) List(ctx context.Context, f repository.BlogFilter) ([]*entity.Blog, int, error) {
	where := ""
	args := []any{}
	if f.Status != "" {
		where = "WHERE status = $1"
		args = append(args, string(f.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM blogs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	n := len(args)
	rows, err := r.pool.Query(ctx, `
		SELECT `+blogColumns+`
		FROM blogs `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*entity.Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *BlogRepository) Update(ctx context.Context, b *entity.Blog) error {
	b.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE blogs
		SET title = $1, content = $2, thumbnail_url = $3, categories = $4, updated_at = $5
		WHERE id = $6
	`, b.Title, b.Content, b.ThumbnailURL, b.Categories, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) UpdateStatus(ctx context.Context, id string, status entity.BlogStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE blogs SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanBlog(row rowScanner) (*entity.Blog, error) {
	b := &entity.Blog{}
	var status string
	if err := row.Scan(
		&b.ID, &b.Title, &b.Content, &b.ThumbnailURL, &status, &b.Categories,
		&b.AuthorName, &b.AuthorEmail, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = entity.BlogStatus(status)
	return b, nil
}

var _ repository.BlogRepository = (*BlogRepository)(nil)

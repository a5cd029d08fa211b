package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

type FundRepository struct {
	pool *pgxpool.Pool
}

func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return &FundRepository{pool: pool}
}

func (r *FundRepository) Create(ctx context.Context, f *entity.Fund) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO funds (donor_name, donor_email, amount_cents, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, f.DonorName, f.DonorEmail, f.AmountCents, f.Currency)

	return row.Scan(&f.ID, &f.CreatedAt)
}

func (r *FundRepository) List(ctx context.Context, page, limit int) ([]*entity.Fund, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM funds`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, donor_name, donor_email, amount_cents, currency, created_at
		FROM funds
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*entity.Fund{}
	for rows.Next() {
		f := &entity.Fund{}
		if err := rows.Scan(&f.ID, &f.DonorName, &f.DonorEmail, &f.AmountCents, &f.Currency, &f.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *FundRepository) SumCents(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(sum(amount_cents), 0) FROM funds`).Scan(&sum)
	return sum, err
}

var _ repository.FundRepository = (*FundRepository)(nil)

package repository

import (
	"context"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
)

// FundRepository records completed contributions and serves the funding
// history and the admin total.
type FundRepository interface {
	Create(ctx context.Context, f *entity.Fund) error
	List(ctx context.Context, page, limit int) ([]*entity.Fund, int, error)
	SumCents(ctx context.Context) (int64, error)
}

package application

import (
	"context"
	"strings"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// FundService records completed contributions and serves the funding page.
// The payment itself happens at the external provider; this only keeps the
// ledger.
type FundService struct {
	Repo repository.FundRepository
}

func NewFundService(repo repository.FundRepository) *FundService {
	return &FundService{Repo: repo}
}

type FundInput struct {
	AmountCents int64
	Currency    string
}

// Record stores a contribution attributed to the acting user.
func (s *FundService) Record(ctx context.Context, in FundInput, actor entity.Identity) (*entity.Fund, error) {
	if in.AmountCents <= 0 {
		return nil, validationf("amount_cents", "must be positive")
	}
	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = "USD"
	}
	f := &entity.Fund{
		DonorName:   actor.Name,
		DonorEmail:  actor.Email,
		AmountCents: in.AmountCents,
		Currency:    cur,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns the funding history, newest first.
func (s *FundService) List(ctx context.Context, page, limit int) ([]*entity.Fund, int, error) {
	return s.Repo.List(ctx, normPage(page), normLimit(limit))
}

// TotalCents sums every recorded contribution.
func (s *FundService) TotalCents(ctx context.Context) (int64, error) {
	return s.Repo.SumCents(ctx)
}

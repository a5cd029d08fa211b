package application

import (
	"context"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/policy"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// StatsService aggregates the admin dashboard numbers.
type StatsService struct {
	Users    repository.UserRepository
	Requests repository.DonationRequestRepository
	Funds    repository.FundRepository
}

func NewStatsService(users repository.UserRepository, requests repository.DonationRequestRepository, funds repository.FundRepository) *StatsService {
	return &StatsService{Users: users, Requests: requests, Funds: funds}
}

type AdminStats struct {
	TotalDonors     int                          `json:"total_donors"`
	TotalFundCents  int64                        `json:"total_fund_cents"`
	RequestsByState map[entity.RequestStatus]int `json:"requests_by_status"`
}

// Admin computes the dashboard stats. Admin only.
func (s *StatsService) Admin(ctx context.Context, actor entity.Identity) (*AdminStats, error) {
	if !policy.Allowed(actor, policy.ActionManageUsers, nil) {
		return nil, denied("only admins may view platform statistics")
	}
	donors, err := s.Users.CountDonors(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Requests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.Funds.SumCents(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{TotalDonors: donors, TotalFundCents: total, RequestsByState: byStatus}, nil
}

package repository

import (
	"context"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
)

// UserFilter narrows List results. Zero values mean "no filter".
type UserFilter struct {
	Status entity.AccountStatus
	Page   int
	Limit  int
}

// DonorSearch matches the public donor-search form: all three fields required
// at the HTTP layer, exact matches here.
type DonorSearch struct {
	BloodGroup entity.BloodGroup
	District   string
	Upazila    string
}

// UserRepository defines storage operations for user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, f UserFilter) ([]*entity.User, int, error)
	// UpdateProfile persists the editable profile fields (name, avatar,
	// blood group, district, upazila) of an existing user. Email, role,
	// and status are never touched here.
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdateRole(ctx context.Context, id string, role entity.Role) error
	UpdateStatus(ctx context.Context, id string, status entity.AccountStatus) error
	SearchDonors(ctx context.Context, q DonorSearch) ([]*entity.User, error)
	CountDonors(ctx context.Context) (int, error)
}

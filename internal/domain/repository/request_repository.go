package repository

import (
	"context"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
)

// RequestFilter narrows List results. Zero values mean "no filter".
type RequestFilter struct {
	Status entity.RequestStatus
	Page   int
	Limit  int
}

// DonationRequestRepository defines storage operations for donation requests.
//
// Claim and UpdateStatus are conditional writes: they mutate the row only if
// its current status matches the expected source state, so two racing
// transitions cannot both win. Implementations return ErrConflict when the
// row exists but the condition failed, and ErrNotFound when the id is
// unresolvable.
type DonationRequestRepository interface {
	Create(ctx context.Context, r *entity.DonationRequest) error
	GetByID(ctx context.Context, id string) (*entity.DonationRequest, error)
	List(ctx context.Context, f RequestFilter) ([]*entity.DonationRequest, int, error)
	ListByRequester(ctx context.Context, email string) ([]*entity.DonationRequest, error)
	Update(ctx context.Context, r *entity.DonationRequest) error

	// Claim sets status=inprogress and the donor fields in one statement,
	// conditioned on status=pending.
	Claim(ctx context.Context, id string, donor entity.Donor) error

	// UpdateStatus moves the request from the expected status to the target
	// status, donor fields untouched.
	UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus) error

	Delete(ctx context.Context, id string) error

	CountByStatus(ctx context.Context) (map[entity.RequestStatus]int, error)
}

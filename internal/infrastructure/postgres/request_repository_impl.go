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

type DonationRequestRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRequestRepository(pool *pgxpool.Pool) *DonationRequestRepository {
	return &DonationRequestRepository{pool: pool}
}

const requestColumns = `
	id, requester_name, requester_email, recipient_name, district, upazila,
	hospital_name, full_address, blood_group, donation_date, donation_time,
	message, status, donor_name, donor_email, created_at, updated_at
`

func (r *DonationRequestRepository) Create(ctx context.Context, req *entity.DonationRequest) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO donation_requests (
			requester_name, requester_email, recipient_name, district, upazila,
			hospital_name, full_address, blood_group, donation_date, donation_time,
			message, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, req.RequesterName, req.RequesterEmail, req.RecipientName, req.District, req.Upazila,
		req.HospitalName, req.FullAddress, string(req.BloodGroup), req.DonationDate, req.DonationTime,
		req.Message, string(req.Status))

	return row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *DonationRequestRepository) GetByID(ctx context.Context, id string) (*entity.DonationRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM donation_requests
		WHERE id = $1
	`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *DonationRequestRepository) List(ctx context.Context, f repository.RequestFilter) ([]*entity.DonationRequest, int, error) {
	where := ""
	args := []any{}
	if f.Status != "" {
		where = "WHERE status = $1"
		args = append(args, string(f.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM donation_requests `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	n := len(args)
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM donation_requests `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *DonationRequestRepository) ListByRequester(ctx context.Context, email string) ([]*entity.DonationRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM donation_requests
		WHERE requester_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// Update writes the editable fields only. Status and donor are never touched
// here; transitions go through Claim and UpdateStatus.
func (r *DonationRequestRepository) Update(ctx context.Context, req *entity.DonationRequest) error {
	req.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE donation_requests
		SET recipient_name = $1, district = $2, upazila = $3, hospital_name = $4,
		    full_address = $5, blood_group = $6, donation_date = $7,
		    donation_time = $8, message = $9, updated_at = $10
		WHERE id = $11
	`, req.RecipientName, req.District, req.Upazila, req.HospitalName,
		req.FullAddress, string(req.BloodGroup), req.DonationDate,
		req.DonationTime, req.Message, req.UpdatedAt, req.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Claim is the conditional write backing pending -> inprogress: status and
// both donor fields change in one statement, only while the row is still
// pending. A concurrent winner leaves RowsAffected at zero, which surfaces
// as ErrConflict so the loser sees an invalid-state outcome.
func (r *DonationRequestRepository) Claim(ctx context.Context, id string, donor entity.Donor) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE donation_requests
		SET status = $1, donor_name = $2, donor_email = $3, updated_at = now()
		WHERE id = $4 AND status = $5
	`, string(entity.StatusInProgress), donor.Name, donor.Email, id, string(entity.StatusPending))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, id)
	}
	return nil
}

func (r *DonationRequestRepository) UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE donation_requests
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, id)
	}
	return nil
}

func (r *DonationRequestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM donation_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DonationRequestRepository) CountByStatus(ctx context.Context) (map[entity.RequestStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM donation_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[entity.RequestStatus]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[entity.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

// conflictOrMissing disambiguates a zero-row conditional write.
func (r *DonationRequestRepository) conflictOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM donation_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*entity.DonationRequest, error) {
	req := &entity.DonationRequest{}
	var bloodGroup, status string
	var donorName, donorEmail *string

	if err := row.Scan(
		&req.ID, &req.RequesterName, &req.RequesterEmail, &req.RecipientName,
		&req.District, &req.Upazila, &req.HospitalName, &req.FullAddress,
		&bloodGroup, &req.DonationDate, &req.DonationTime, &req.Message,
		&status, &donorName, &donorEmail, &req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, err
	}

	req.BloodGroup = entity.BloodGroup(bloodGroup)
	req.Status = entity.RequestStatus(status)
	if donorName != nil && donorEmail != nil {
		req.Donor = &entity.Donor{Name: *donorName, Email: *donorEmail}
	}
	return req, nil
}

func collectRequests(rows pgx.Rows) ([]*entity.DonationRequest, error) {
	out := []*entity.DonationRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

var _ repository.DonationRequestRepository = (*DonationRequestRepository)(nil)

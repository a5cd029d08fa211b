package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, email, name, avatar_url, blood_group, district, upazila, role, status,
	created_at, updated_at
`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, blood_group, district, upazila, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.AvatarURL, string(u.BloodGroup), u.District, u.Upazila,
		string(u.Role), string(u.Status))

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = $1
	`, value)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, f repository.UserFilter) ([]*entity.User, int, error) {
	where := ""
	args := []any{}
	if f.Status != "" {
		where = "WHERE status = $1"
		args = append(args, string(f.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	n := len(args)
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $1, avatar_url = $2, blood_group = $3, district = $4, upazila = $5,
			updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`, u.Name, u.AvatarURL, string(u.BloodGroup), u.District, u.Upazila, u.ID)

	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.updateField(ctx, id, "role", string(role))
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status entity.AccountStatus) error {
	return r.updateField(ctx, id, "status", string(status))
}

func (r *UserRepository) updateField(ctx context.Context, id, column, value string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET `+column+` = $1, updated_at = now() WHERE id = $2
	`, value, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SearchDonors(ctx context.Context, q repository.DonorSearch) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1 AND status = $2 AND blood_group = $3 AND district = $4 AND upazila = $5
		ORDER BY name
		LIMIT 50
	`, string(entity.RoleDonor), string(entity.AccountActive), string(q.BloodGroup), q.District, q.Upazila)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *UserRepository) CountDonors(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1 AND status = $2`,
		string(entity.RoleDonor), string(entity.AccountActive)).Scan(&n)
	return n, err
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	var bloodGroup, role, status string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL, &bloodGroup, &u.District,
		&u.Upazila, &role, &status, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.BloodGroup = entity.BloodGroup(bloodGroup)
	u.Role = entity.Role(role)
	u.Status = entity.AccountStatus(status)
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)

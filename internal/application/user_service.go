package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/policy"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// UserService manages the user registry: registration, admin role/status
// changes, and the public donor search. Donor search is served from
// Elasticsearch when configured and falls back to Postgres otherwise.
type UserService struct {
	Repo          repository.UserRepository
	Logger        *logrus.Logger
	ES            *elasticsearch.Client
	ESDonorsIndex string
	Cache         IdentityCache
}

// IdentityCache drops a cached identity after a role or status change so the
// change applies on the next request instead of after the cache TTL.
type IdentityCache interface {
	Invalidate(ctx context.Context, email string)
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esDonorsIndex string, cache IdentityCache) *UserService {
	return &UserService{Repo: repo, Logger: logger, ES: es, ESDonorsIndex: esDonorsIndex, Cache: cache}
}

// RegisterInput is the profile stored at sign-up. Credentials stay with the
// external identity provider.
type RegisterInput struct {
	Email      string
	Name       string
	AvatarURL  string
	BloodGroup string
	District   string
	Upazila    string
}

// Register stores a new profile with role=donor and status=active.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	fields := map[string]string{}
	requireField(fields, "email", in.Email)
	requireField(fields, "name", in.Name)
	requireField(fields, "district", in.District)
	requireField(fields, "upazila", in.Upazila)
	group, err := entity.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		fields["blood_group"] = "must be one of the 8 valid blood groups"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	u := &entity.User{
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Name:       strings.TrimSpace(in.Name),
		AvatarURL:  in.AvatarURL,
		BloodGroup: group,
		District:   strings.TrimSpace(in.District),
		Upazila:    strings.TrimSpace(in.Upazila),
		Role:       entity.RoleDonor,
		Status:     entity.AccountActive,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationf("email", "already registered")
		}
		return nil, err
	}
	s.indexDonor(ctx, u)
	return u, nil
}

// ProfileUpdateInput carries the fields a user may edit on their own
// profile. Email is fixed at registration and role/status are admin-only.
type ProfileUpdateInput struct {
	Name       string
	AvatarURL  string
	BloodGroup string
	District   string
	Upazila    string
}

// UpdateProfile replaces the acting user's editable profile fields, then
// re-indexes the donor document and drops the cached identity so the new
// name is picked up on the next request.
func (s *UserService) UpdateProfile(ctx context.Context, email string, in ProfileUpdateInput) (*entity.User, error) {
	fields := map[string]string{}
	requireField(fields, "name", in.Name)
	requireField(fields, "district", in.District)
	requireField(fields, "upazila", in.Upazila)
	group, err := entity.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		fields["blood_group"] = "must be one of the 8 valid blood groups"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user", email)
		}
		return nil, err
	}

	u.Name = strings.TrimSpace(in.Name)
	u.AvatarURL = in.AvatarURL
	u.BloodGroup = group
	u.District = strings.TrimSpace(in.District)
	u.Upazila = strings.TrimSpace(in.Upazila)
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user", email)
		}
		return nil, err
	}

	s.indexDonor(ctx, u)
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, u.Email)
	}
	return u, nil
}

// GetByEmail fetches a profile by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("user", email)
		}
		return nil, err
	}
	return u, nil
}

// List returns users for the admin dashboard, filterable by account status.
func (s *UserService) List(ctx context.Context, status string, page, limit int, actor entity.Identity) ([]*entity.User, int, error) {
	if !policy.Allowed(actor, policy.ActionManageUsers, nil) {
		return nil, 0, denied("only admins may list users")
	}
	f := repository.UserFilter{Page: normPage(page), Limit: normLimit(limit)}
	if status != "" {
		st, err := entity.ParseAccountStatus(status)
		if err != nil {
			return nil, 0, validationf("status", "unknown account status %q", status)
		}
		f.Status = st
	}
	return s.Repo.List(ctx, f)
}

// ChangeRole sets a user's role. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, id, role string, actor entity.Identity) error {
	if !policy.Allowed(actor, policy.ActionManageUsers, nil) {
		return denied("only admins may change user roles")
	}
	r, err := entity.ParseRole(role)
	if err != nil {
		return validationf("role", "must be donor, volunteer, or admin")
	}
	if err := s.Repo.UpdateRole(ctx, id, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user", id)
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ChangeStatus activates or blocks an account. Admin only. A blocked donor
// cannot create or claim donation requests.
func (s *UserService) ChangeStatus(ctx context.Context, id, status string, actor entity.Identity) error {
	if !policy.Allowed(actor, policy.ActionManageUsers, nil) {
		return denied("only admins may change account status")
	}
	st, err := entity.ParseAccountStatus(status)
	if err != nil {
		return validationf("status", "must be active or blocked")
	}
	if err := s.Repo.UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("user", id)
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return
	}
	s.Cache.Invalidate(ctx, u.Email)
}

// SearchDonors serves the public donor search. All three filters are
// required; matching is exact on group, district, and upazila.
func (s *UserService) SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]*entity.User, error) {
	group, err := entity.ParseBloodGroup(bloodGroup)
	if err != nil {
		return nil, validationf("blood_group", "must be one of the 8 valid blood groups")
	}
	if strings.TrimSpace(district) == "" || strings.TrimSpace(upazila) == "" {
		return nil, validationf("district", "district and upazila are required")
	}

	if s.ES != nil && s.ESDonorsIndex != "" {
		if out, err := s.searchDonorsES(ctx, group, district, upazila); err == nil {
			return out, nil
		} else if s.Logger != nil {
			s.Logger.WithError(err).Warn("es donor search failed, falling back to postgres")
		}
	}
	return s.Repo.SearchDonors(ctx, repository.DonorSearch{
		BloodGroup: group,
		District:   strings.TrimSpace(district),
		Upazila:    strings.TrimSpace(upazila),
	})
}

func (s *UserService) searchDonorsES(ctx context.Context, group entity.BloodGroup, district, upazila string) ([]*entity.User, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"blood_group": string(group)}},
					{"term": map[string]any{"district": strings.TrimSpace(district)}},
					{"term": map[string]any{"upazila": strings.TrimSpace(upazila)}},
				},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESDonorsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source struct {
					ID         string `json:"id"`
					Email      string `json:"email"`
					Name       string `json:"name"`
					AvatarURL  string `json:"avatar_url"`
					BloodGroup string `json:"blood_group"`
					District   string `json:"district"`
					Upazila    string `json:"upazila"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, &entity.User{
			ID:         h.Source.ID,
			Email:      h.Source.Email,
			Name:       h.Source.Name,
			AvatarURL:  h.Source.AvatarURL,
			BloodGroup: entity.BloodGroup(h.Source.BloodGroup),
			District:   h.Source.District,
			Upazila:    h.Source.Upazila,
		})
	}
	return out, nil
}

func (s *UserService) indexDonor(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESDonorsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"blood_group": string(u.BloodGroup),
		"district":    u.District,
		"upazila":     u.Upazila,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESDonorsIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/policy"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// EventPublisher is the outbound side channel for lifecycle events.
// helpers.RabbitPublisher satisfies it; nil disables publishing.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// RequestEvent is the JSON payload published after a successful lifecycle
// transition, consumed by cmd/notifier.
type RequestEvent struct {
	Type           string    `json:"type"` // request.claimed, request.done, request.canceled
	RequestID      string    `json:"request_id"`
	RequesterName  string    `json:"requester_name"`
	RequesterEmail string    `json:"requester_email"`
	DonorName      string    `json:"donor_name,omitempty"`
	DonorEmail     string    `json:"donor_email,omitempty"`
	BloodGroup     string    `json:"blood_group"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// RequestService enforces the donation-request state machine and the
// role-gated transition rules. It is a pure function of (stored state, input,
// acting identity): the caller's identity always arrives as a parameter,
// never from ambient state.
type RequestService struct {
	Repo   repository.DonationRequestRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewRequestService(repo repository.DonationRequestRepository, events EventPublisher, logger *logrus.Logger) *RequestService {
	return &RequestService{Repo: repo, Events: events, Logger: logger}
}

// CreateRequestInput carries the creation payload. Requester identity comes
// from the acting user, not the payload.
type CreateRequestInput struct {
	RecipientName string
	District      string
	Upazila       string
	HospitalName  string
	FullAddress   string
	BloodGroup    string
	DonationDate  time.Time
	DonationTime  string
	Message       string
}

// Create validates the payload and stores a new pending request.
func (s *RequestService) Create(ctx context.Context, in CreateRequestInput, actor entity.Identity) (*entity.DonationRequest, error) {
	if !policy.Allowed(actor, policy.ActionCreateRequest, nil) {
		return nil, denied("blocked accounts cannot create donation requests")
	}

	fields := map[string]string{}
	requireField(fields, "recipient_name", in.RecipientName)
	requireField(fields, "district", in.District)
	requireField(fields, "upazila", in.Upazila)
	requireField(fields, "hospital_name", in.HospitalName)
	requireField(fields, "full_address", in.FullAddress)
	requireField(fields, "donation_time", in.DonationTime)
	if in.DonationDate.IsZero() {
		fields["donation_date"] = "is required"
	} else if in.DonationDate.Before(today()) {
		fields["donation_date"] = "must not be in the past"
	}
	group, err := entity.ParseBloodGroup(in.BloodGroup)
	if err != nil {
		fields["blood_group"] = "must be one of the 8 valid blood groups"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	r := &entity.DonationRequest{
		RequesterName:  actor.Name,
		RequesterEmail: actor.Email,
		RecipientName:  strings.TrimSpace(in.RecipientName),
		District:       strings.TrimSpace(in.District),
		Upazila:        strings.TrimSpace(in.Upazila),
		HospitalName:   strings.TrimSpace(in.HospitalName),
		FullAddress:    strings.TrimSpace(in.FullAddress),
		BloodGroup:     group,
		DonationDate:   in.DonationDate,
		DonationTime:   in.DonationTime,
		Message:        strings.TrimSpace(in.Message),
		Status:         entity.StatusPending,
		Donor:          nil,
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// EditRequestInput is a patch: nil pointers leave the field untouched.
// Status and donor are not reachable through Edit.
type EditRequestInput struct {
	RecipientName *string
	District      *string
	Upazila       *string
	HospitalName  *string
	FullAddress   *string
	BloodGroup    *string
	DonationDate  *time.Time
	DonationTime  *string
	Message       *string
}

// Edit merges the patch into the request. Allowed for the requester or an
// admin while the request is pending or inprogress; terminal requests are
// locked permanently.
func (s *RequestService) Edit(ctx context.Context, id string, patch EditRequestInput, actor entity.Identity) (*entity.DonationRequest, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Editable() {
		return nil, invalidState("request %s is %s; edits are locked", id, r.Status)
	}
	if !policy.Allowed(actor, policy.ActionEditRequest, reqCtx(r)) {
		return nil, denied("only the requester or an admin may edit this request")
	}

	applyString(&r.RecipientName, patch.RecipientName)
	applyString(&r.District, patch.District)
	applyString(&r.Upazila, patch.Upazila)
	applyString(&r.HospitalName, patch.HospitalName)
	applyString(&r.FullAddress, patch.FullAddress)
	applyString(&r.DonationTime, patch.DonationTime)
	applyString(&r.Message, patch.Message)
	if patch.DonationDate != nil {
		r.DonationDate = *patch.DonationDate
	}
	if patch.BloodGroup != nil {
		group, err := entity.ParseBloodGroup(*patch.BloodGroup)
		if err != nil {
			return nil, validationf("blood_group", "must be one of the 8 valid blood groups")
		}
		r.BloodGroup = group
	}

	if err := s.Repo.Update(ctx, r); err != nil {
		return nil, s.mapRepoErr(err, id)
	}
	return r, nil
}

// DonorInfo is required when claiming a pending request.
type DonorInfo struct {
	Name  string
	Email string
}

// Transition applies one edge of the state machine. Edge legality is decided
// before the role gate, so mutating a terminal request is always
// InvalidStateError regardless of who asks. The pending->inprogress edge is
// a conditional write in the repository: status and donor change in one
// statement or not at all, and a lost race surfaces as InvalidStateError.
func (s *RequestService) Transition(ctx context.Context, id string, target entity.RequestStatus, actor entity.Identity, donor *DonorInfo) (*entity.DonationRequest, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case r.Status == entity.StatusPending && target == entity.StatusInProgress:
		return s.claim(ctx, r, actor, donor)

	case r.Status == entity.StatusInProgress && (target == entity.StatusDone || target == entity.StatusCanceled):
		return s.advance(ctx, r, target, actor)

	case r.Status == entity.StatusPending && target == entity.StatusCanceled:
		return s.cancelPending(ctx, r, actor)

	default:
		return nil, invalidState("no transition from %s to %s", r.Status, target)
	}
}

func (s *RequestService) claim(ctx context.Context, r *entity.DonationRequest, actor entity.Identity, donor *DonorInfo) (*entity.DonationRequest, error) {
	if !policy.Allowed(actor, policy.ActionClaimRequest, reqCtx(r)) {
		return nil, denied("blocked accounts cannot claim donation requests")
	}
	if donor == nil || strings.TrimSpace(donor.Name) == "" || strings.TrimSpace(donor.Email) == "" {
		return nil, validationf("donor", "donor name and email are required to claim a request")
	}

	d := entity.Donor{Name: strings.TrimSpace(donor.Name), Email: strings.TrimSpace(donor.Email)}
	if err := s.Repo.Claim(ctx, r.ID, d); err != nil {
		return nil, s.mapRepoErr(err, r.ID)
	}
	r.Status = entity.StatusInProgress
	r.Donor = &d

	s.publish(ctx, "request.claimed", r)
	return r, nil
}

func (s *RequestService) advance(ctx context.Context, r *entity.DonationRequest, target entity.RequestStatus, actor entity.Identity) (*entity.DonationRequest, error) {
	if !policy.Allowed(actor, policy.ActionAdvanceRequest, reqCtx(r)) {
		return nil, denied("only a volunteer, an admin, or the assigned donor may advance this request")
	}
	if err := s.Repo.UpdateStatus(ctx, r.ID, entity.StatusInProgress, target); err != nil {
		return nil, s.mapRepoErr(err, r.ID)
	}
	r.Status = target

	if target == entity.StatusDone {
		s.publish(ctx, "request.done", r)
	} else {
		s.publish(ctx, "request.canceled", r)
	}
	return r, nil
}

func (s *RequestService) cancelPending(ctx context.Context, r *entity.DonationRequest, actor entity.Identity) (*entity.DonationRequest, error) {
	if !policy.Allowed(actor, policy.ActionCancelPending, reqCtx(r)) {
		return nil, denied("only the requester or an admin may cancel a pending request")
	}
	if err := s.Repo.UpdateStatus(ctx, r.ID, entity.StatusPending, entity.StatusCanceled); err != nil {
		return nil, s.mapRepoErr(err, r.ID)
	}
	r.Status = entity.StatusCanceled

	s.publish(ctx, "request.canceled", r)
	return r, nil
}

// Delete removes the request permanently. Allowed from any status, including
// terminal ones.
func (s *RequestService) Delete(ctx context.Context, id string, actor entity.Identity) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allowed(actor, policy.ActionDeleteRequest, reqCtx(r)) {
		return denied("only the requester or an admin may delete this request")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.mapRepoErr(err, id)
	}
	return nil
}

// Get fetches one request.
func (s *RequestService) Get(ctx context.Context, id string) (*entity.DonationRequest, error) {
	return s.get(ctx, id)
}

// List returns requests filtered by status, paginated, plus the total count.
func (s *RequestService) List(ctx context.Context, status string, page, limit int) ([]*entity.DonationRequest, int, error) {
	f := repository.RequestFilter{Page: normPage(page), Limit: normLimit(limit)}
	if status != "" {
		st, err := entity.ParseRequestStatus(status)
		if err != nil {
			return nil, 0, validationf("status", "unknown status %q", status)
		}
		f.Status = st
	}
	return s.Repo.List(ctx, f)
}

// ListByRequester returns the requests created by the given requester email.
func (s *RequestService) ListByRequester(ctx context.Context, email string) ([]*entity.DonationRequest, error) {
	return s.Repo.ListByRequester(ctx, email)
}

func (s *RequestService) get(ctx context.Context, id string) (*entity.DonationRequest, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err, id)
	}
	return r, nil
}

func (s *RequestService) mapRepoErr(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound("donation request", id)
	case errors.Is(err, repository.ErrConflict):
		return invalidState("request %s changed state concurrently", id)
	default:
		return err
	}
}

func (s *RequestService) publish(ctx context.Context, eventType string, r *entity.DonationRequest) {
	if s.Events == nil {
		return
	}
	ev := RequestEvent{
		Type:           eventType,
		RequestID:      r.ID,
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
		BloodGroup:     string(r.BloodGroup),
		OccurredAt:     time.Now().UTC(),
	}
	if r.Donor != nil {
		ev.DonorName = r.Donor.Name
		ev.DonorEmail = r.Donor.Email
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("request_id", r.ID).Warn("lifecycle event publish failed")
	}
}

func reqCtx(r *entity.DonationRequest) *policy.RequestContext {
	rc := &policy.RequestContext{RequesterEmail: r.RequesterEmail}
	if r.Donor != nil {
		rc.DonorEmail = r.Donor.Email
	}
	return rc
}

func requireField(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "is required"
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func normLimit(l int) int {
	if l < 1 {
		return 10
	}
	if l > 100 {
		return 100
	}
	return l
}

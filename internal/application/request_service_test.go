package application_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// fakeRequestRepo is an in-memory DonationRequestRepository with the same
// conditional-write semantics as the Postgres implementation.
type fakeRequestRepo struct {
	mu         sync.Mutex
	seq        int
	rows       map[string]*entity.DonationRequest
	lastFilter repository.RequestFilter
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: map[string]*entity.DonationRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, r *entity.DonationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = "req-" + strconv.Itoa(f.seq)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*entity.DonationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	if r.Donor != nil {
		d := *r.Donor
		cp.Donor = &d
	}
	return &cp, nil
}

func (f *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]*entity.DonationRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	out := []*entity.DonationRequest{}
	for _, r := range f.rows {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRequestRepo) ListByRequester(_ context.Context, email string) ([]*entity.DonationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.DonationRequest{}
	for _, r := range f.rows {
		if r.RequesterEmail == email {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, r *entity.DonationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *r
	f.rows[r.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) Claim(_ context.Context, id string, donor entity.Donor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.Status != entity.StatusPending {
		return repository.ErrConflict
	}
	r.Status = entity.StatusInProgress
	d := donor
	r.Donor = &d
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, id string, from, to entity.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if r.Status != from {
		return repository.ErrConflict
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRequestRepo) CountByStatus(_ context.Context) (map[entity.RequestStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[entity.RequestStatus]int{}
	for _, r := range f.rows {
		out[r.Status]++
	}
	return out, nil
}

var _ repository.DonationRequestRepository = (*fakeRequestRepo)(nil)

// capturedEvents records published lifecycle events.
type capturedEvents struct {
	mu     sync.Mutex
	events []application.RequestEvent
}

func (c *capturedEvents) PublishJSON(_ context.Context, body any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, body.(application.RequestEvent))
	return nil
}

func (c *capturedEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	requester = entity.Identity{ID: "u-req", Email: "sadia@x.test", Name: "Sadia", Role: entity.RoleDonor, Status: entity.AccountActive}
	donorUser = entity.Identity{ID: "u-don", Email: "tamim@x.test", Name: "Tamim", Role: entity.RoleDonor, Status: entity.AccountActive}
	volunteer = entity.Identity{ID: "u-vol", Email: "vol@x.test", Name: "Vol", Role: entity.RoleVolunteer, Status: entity.AccountActive}
	admin     = entity.Identity{ID: "u-adm", Email: "adm@x.test", Name: "Adm", Role: entity.RoleAdmin, Status: entity.AccountActive}
)

func newService(t *testing.T) (*application.RequestService, *fakeRequestRepo, *capturedEvents) {
	t.Helper()
	repo := newFakeRequestRepo()
	ev := &capturedEvents{}
	return application.NewRequestService(repo, ev, nil), repo, ev
}

func validInput() application.CreateRequestInput {
	return application.CreateRequestInput{
		RecipientName: "Rahim Uddin",
		District:      "Dhaka",
		Upazila:       "Dhanmondi",
		HospitalName:  "Dhaka Medical College",
		FullAddress:   "100 Secretariat Rd",
		BloodGroup:    "O+",
		DonationDate:  time.Now().UTC().AddDate(0, 0, 3),
		DonationTime:  "10:30",
		Message:       "urgent",
	}
}

func mustCreate(t *testing.T, svc *application.RequestService) *entity.DonationRequest {
	t.Helper()
	r, err := svc.Create(context.Background(), validInput(), requester)
	require.NoError(t, err)
	return r
}

func TestCreateStartsPendingWithoutDonor(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	assert.Equal(t, entity.StatusPending, r.Status)
	assert.Nil(t, r.Donor)
	assert.Equal(t, requester.Email, r.RequesterEmail)
	assert.Equal(t, requester.Name, r.RequesterName)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newService(t)

	in := validInput()
	in.RecipientName = ""
	in.BloodGroup = "X+"
	_, err := svc.Create(context.Background(), in, requester)
	require.True(t, application.IsValidation(err))
	verr := err.(*application.ValidationError)
	assert.Contains(t, verr.Fields, "recipient_name")
	assert.Contains(t, verr.Fields, "blood_group")
}

func TestCreateRejectsPastDate(t *testing.T) {
	svc, _, _ := newService(t)

	in := validInput()
	in.DonationDate = time.Now().UTC().AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), in, requester)
	assert.True(t, application.IsValidation(err))
}

func TestCreateBlockedThenUnblocked(t *testing.T) {
	svc, _, _ := newService(t)

	blocked := requester
	blocked.Status = entity.AccountBlocked
	_, err := svc.Create(context.Background(), validInput(), blocked)
	assert.True(t, application.IsAccessDenied(err))

	// Same user, re-resolved after an admin unblocks: creation succeeds.
	_, err = svc.Create(context.Background(), validInput(), requester)
	assert.NoError(t, err)
}

func TestClaimSetsDonorAtomically(t *testing.T) {
	svc, repo, ev := newService(t)
	r := mustCreate(t, svc)

	got, err := svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser,
		&application.DonorInfo{Name: "Tamim", Email: "tamim@x.test"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, got.Status)
	require.NotNil(t, got.Donor)
	assert.Equal(t, "tamim@x.test", got.Donor.Email)

	stored, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, stored.Status)
	require.NotNil(t, stored.Donor)

	assert.Equal(t, []string{"request.claimed"}, ev.types())
}

func TestClaimRequiresDonorInfo(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser, nil)
	assert.True(t, application.IsValidation(err))

	_, err = svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser,
		&application.DonorInfo{Name: "Tamim"})
	assert.True(t, application.IsValidation(err))
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			actor := entity.Identity{
				Email:  "claimer" + strconv.Itoa(i) + "@x.test",
				Name:   "Claimer " + strconv.Itoa(i),
				Role:   entity.RoleDonor,
				Status: entity.AccountActive,
			}
			_, errs[i] = svc.Transition(context.Background(), r.ID, entity.StatusInProgress, actor,
				&application.DonorInfo{Name: actor.Name, Email: actor.Email})
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, application.IsInvalidState(err), "loser must see invalid state, got %v", err)
		}
	}
	assert.Equal(t, 1, winners)

	got, err := svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, got.Status)
	require.NotNil(t, got.Donor)
}

func TestAdvanceRoleGate(t *testing.T) {
	svc, _, ev := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser,
		&application.DonorInfo{Name: donorUser.Name, Email: donorUser.Email})
	require.NoError(t, err)

	// A donor not assigned to this request cannot advance it.
	other := entity.Identity{Email: "other@x.test", Role: entity.RoleDonor, Status: entity.AccountActive}
	_, err = svc.Transition(context.Background(), r.ID, entity.StatusDone, other, nil)
	assert.True(t, application.IsAccessDenied(err))

	// The assigned donor can.
	got, err := svc.Transition(context.Background(), r.ID, entity.StatusDone, donorUser, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, got.Status)
	assert.Equal(t, []string{"request.claimed", "request.done"}, ev.types())
}

func TestVolunteerAdvancesAnyRequest(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser,
		&application.DonorInfo{Name: donorUser.Name, Email: donorUser.Email})
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), r.ID, entity.StatusCanceled, volunteer, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCanceled, got.Status)
}

func TestCancelPendingOwnership(t *testing.T) {
	svc, _, ev := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusCanceled, volunteer, nil)
	assert.True(t, application.IsAccessDenied(err))

	got, err := svc.Transition(context.Background(), r.ID, entity.StatusCanceled, requester, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCanceled, got.Status)
	assert.Nil(t, got.Donor)
	assert.Equal(t, []string{"request.canceled"}, ev.types())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusCanceled, requester, nil)
	require.NoError(t, err)

	// Even an admin cannot move a terminal request anywhere.
	for _, target := range []entity.RequestStatus{entity.StatusPending, entity.StatusInProgress, entity.StatusDone} {
		_, err := svc.Transition(context.Background(), r.ID, target, admin, nil)
		assert.True(t, application.IsInvalidState(err), "target %s", target)
	}

	// Edits are locked too.
	name := "New Name"
	_, err = svc.Edit(context.Background(), r.ID, application.EditRequestInput{RecipientName: &name}, admin)
	assert.True(t, application.IsInvalidState(err))
}

func TestIllegalEdgeBeatsRoleGate(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	// pending -> done skips the claim; the stranger would also fail the role
	// gate, but edge legality is checked first.
	stranger := entity.Identity{Email: "nobody@x.test", Role: entity.RoleDonor, Status: entity.AccountActive}
	_, err := svc.Transition(context.Background(), r.ID, entity.StatusDone, stranger, nil)
	assert.True(t, application.IsInvalidState(err))
}

func TestEditMergesPatch(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	name := "Karim Uddin"
	group := "AB-"
	got, err := svc.Edit(context.Background(), r.ID, application.EditRequestInput{
		RecipientName: &name,
		BloodGroup:    &group,
	}, requester)
	require.NoError(t, err)
	assert.Equal(t, "Karim Uddin", got.RecipientName)
	assert.Equal(t, entity.BloodABNeg, got.BloodGroup)
	// Untouched fields keep their values.
	assert.Equal(t, "Dhaka", got.District)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Nil(t, got.Donor)
}

func TestEditIdempotentForNoOpPatch(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	// A patch that re-submits the current field values succeeds and
	// changes nothing.
	group := string(r.BloodGroup)
	date := r.DonationDate
	same := application.EditRequestInput{
		RecipientName: &r.RecipientName,
		District:      &r.District,
		Upazila:       &r.Upazila,
		HospitalName:  &r.HospitalName,
		FullAddress:   &r.FullAddress,
		BloodGroup:    &group,
		DonationDate:  &date,
		DonationTime:  &r.DonationTime,
		Message:       &r.Message,
	}

	got, err := svc.Edit(context.Background(), r.ID, same, requester)
	require.NoError(t, err)
	assert.Equal(t, r.RecipientName, got.RecipientName)
	assert.Equal(t, r.District, got.District)
	assert.Equal(t, r.Upazila, got.Upazila)
	assert.Equal(t, r.HospitalName, got.HospitalName)
	assert.Equal(t, r.FullAddress, got.FullAddress)
	assert.Equal(t, r.BloodGroup, got.BloodGroup)
	assert.True(t, r.DonationDate.Equal(got.DonationDate))
	assert.Equal(t, r.DonationTime, got.DonationTime)
	assert.Equal(t, r.Message, got.Message)
	assert.Equal(t, entity.StatusPending, got.Status)
	assert.Nil(t, got.Donor)

	// Re-applying the same patch again gives the same result.
	again, err := svc.Edit(context.Background(), r.ID, same, requester)
	require.NoError(t, err)
	assert.Equal(t, got.RecipientName, again.RecipientName)
	assert.Equal(t, entity.StatusPending, again.Status)
	assert.Nil(t, again.Donor)
}

func TestEditAccessDenied(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	name := "X"
	_, err := svc.Edit(context.Background(), r.ID, application.EditRequestInput{RecipientName: &name}, donorUser)
	assert.True(t, application.IsAccessDenied(err))
}

func TestDeleteAllowedFromTerminal(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), r.ID, entity.StatusCanceled, requester, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), r.ID, requester))

	_, err = svc.Get(context.Background(), r.ID)
	assert.True(t, application.IsNotFound(err))
}

func TestDeleteOwnership(t *testing.T) {
	svc, _, _ := newService(t)
	r := mustCreate(t, svc)

	err := svc.Delete(context.Background(), r.ID, donorUser)
	assert.True(t, application.IsAccessDenied(err))

	assert.NoError(t, svc.Delete(context.Background(), r.ID, admin))
}

func TestGetUnknownID(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, application.IsNotFound(err))
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _, _ := newService(t)
	a := mustCreate(t, svc)
	mustCreate(t, svc)

	_, err := svc.Transition(context.Background(), a.ID, entity.StatusCanceled, requester, nil)
	require.NoError(t, err)

	rs, total, err := svc.List(context.Background(), "pending", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rs, 1)
	assert.Equal(t, entity.StatusPending, rs[0].Status)

	_, _, err = svc.List(context.Background(), "bogus", 1, 10)
	assert.True(t, application.IsValidation(err))
}

func TestListNormalizesPaging(t *testing.T) {
	svc, repo, _ := newService(t)
	mustCreate(t, svc)

	// An oversized limit clamps to the maximum page size.
	_, _, err := svc.List(context.Background(), "", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastFilter.Limit)

	// Zero and negative values fall back to the defaults.
	_, _, err = svc.List(context.Background(), "", 0, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}

func TestFullLifecycleScenario(t *testing.T) {
	svc, _, ev := newService(t)

	in := validInput()
	in.BloodGroup = "o+"
	r, err := svc.Create(context.Background(), in, requester)
	require.NoError(t, err)
	assert.Equal(t, entity.BloodOPos, r.BloodGroup)

	_, err = svc.Transition(context.Background(), r.ID, entity.StatusInProgress, donorUser,
		&application.DonorInfo{Name: "Tamim", Email: "tamim@x.test"})
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), r.ID, entity.StatusDone, volunteer, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, got.Status)
	require.NotNil(t, got.Donor)
	assert.Equal(t, "Tamim", got.Donor.Name)

	assert.Equal(t, []string{"request.claimed", "request.done"}, ev.types())
}

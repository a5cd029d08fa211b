package application_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

type fakeBlogRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*entity.Blog
}

func newFakeBlogRepo() *fakeBlogRepo {
	return &fakeBlogRepo{rows: map[string]*entity.Blog{}}
}

func (f *fakeBlogRepo) Create(_ context.Context, b *entity.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = "blog-" + strconv.Itoa(f.seq)
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBlogRepo) GetByID(_ context.Context, id string) (*entity.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBlogRepo) List(_ context.Context, filter repository.BlogFilter) ([]*entity.Blog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*entity.Blog{}
	for _, b := range f.rows {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeBlogRepo) Update(_ context.Context, b *entity.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[b.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *b
	f.rows[b.ID] = &cp
	return nil
}

func (f *fakeBlogRepo) UpdateStatus(_ context.Context, id string, status entity.BlogStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBlogRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

var _ repository.BlogRepository = (*fakeBlogRepo)(nil)

func TestBlogCreateStartsAsDraft(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	b, err := svc.Create(context.Background(), application.BlogInput{
		Title:      "Why donate",
		Content:    "Every donation saves lives.",
		Categories: []string{"awareness"},
	}, volunteer)
	require.NoError(t, err)
	assert.Equal(t, entity.BlogDraft, b.Status)
	assert.Equal(t, volunteer.Email, b.AuthorEmail)
}

func TestBlogWriteGate(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	_, err := svc.Create(context.Background(), application.BlogInput{Title: "t", Content: "c"}, donorUser)
	assert.True(t, application.IsAccessDenied(err))
}

func TestBlogPublishAdminOnly(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	b, err := svc.Create(context.Background(), application.BlogInput{Title: "t", Content: "c"}, volunteer)
	require.NoError(t, err)

	err = svc.SetStatus(context.Background(), b.ID, "published", volunteer)
	assert.True(t, application.IsAccessDenied(err))

	require.NoError(t, svc.SetStatus(context.Background(), b.ID, "published", admin))
	got, err := svc.Get(context.Background(), b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.BlogPublished, got.Status)
}

func TestBlogDraftHiddenFromPublicGet(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	b, err := svc.Create(context.Background(), application.BlogInput{Title: "t", Content: "c"}, volunteer)
	require.NoError(t, err)

	// Anonymous fetch of a draft looks like a missing post.
	_, err = svc.Get(context.Background(), b.ID, true)
	assert.True(t, application.IsNotFound(err))

	got, err := svc.Get(context.Background(), b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.BlogDraft, got.Status)

	require.NoError(t, svc.SetStatus(context.Background(), b.ID, "published", admin))
	_, err = svc.Get(context.Background(), b.ID, true)
	assert.NoError(t, err)
}

func TestBlogPublicListOnlyPublished(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	draft, err := svc.Create(context.Background(), application.BlogInput{Title: "draft", Content: "c"}, volunteer)
	require.NoError(t, err)
	pub, err := svc.Create(context.Background(), application.BlogInput{Title: "live", Content: "c"}, volunteer)
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(context.Background(), pub.ID, "published", admin))

	got, total, err := svc.List(context.Background(), "", 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, pub.ID, got[0].ID)

	// Staff listing sees drafts too.
	_, total, err = svc.List(context.Background(), "", 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	_ = draft
}

func TestBlogDeleteAdminOnly(t *testing.T) {
	svc := application.NewBlogService(newFakeBlogRepo())

	b, err := svc.Create(context.Background(), application.BlogInput{Title: "t", Content: "c"}, volunteer)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), b.ID, volunteer)
	assert.True(t, application.IsAccessDenied(err))

	require.NoError(t, svc.Delete(context.Background(), b.ID, admin))
	_, err = svc.Get(context.Background(), b.ID, false)
	assert.True(t, application.IsNotFound(err))
}

package application

import (
	"context"
	"errors"
	"strings"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/domain/policy"
	"github.com/bloodlink/bloodlink-api/internal/domain/repository"
)

// BlogService manages dashboard content. Volunteers create and edit drafts;
// publishing, unpublishing, and deletion are admin only.
type BlogService struct {
	Repo repository.BlogRepository
}

func NewBlogService(repo repository.BlogRepository) *BlogService {
	return &BlogService{Repo: repo}
}

type BlogInput struct {
	Title        string
	Content      string
	ThumbnailURL string
	Categories   []string
}

// Create stores a new draft authored by the acting user.
func (s *BlogService) Create(ctx context.Context, in BlogInput, actor entity.Identity) (*entity.Blog, error) {
	if !policy.Allowed(actor, policy.ActionWriteBlog, nil) {
		return nil, denied("only volunteers and admins may create blog posts")
	}
	fields := map[string]string{}
	requireField(fields, "title", in.Title)
	requireField(fields, "content", in.Content)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	b := &entity.Blog{
		Title:        strings.TrimSpace(in.Title),
		Content:      in.Content,
		ThumbnailURL: in.ThumbnailURL,
		Status:       entity.BlogDraft,
		Categories:   in.Categories,
		AuthorName:   actor.Name,
		AuthorEmail:  actor.Email,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Edit replaces the editable fields. Status is untouched; use SetStatus.
func (s *BlogService) Edit(ctx context.Context, id string, in BlogInput, actor entity.Identity) (*entity.Blog, error) {
	if !policy.Allowed(actor, policy.ActionWriteBlog, nil) {
		return nil, denied("only volunteers and admins may edit blog posts")
	}
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		b.Title = t
	}
	if in.Content != "" {
		b.Content = in.Content
	}
	if in.ThumbnailURL != "" {
		b.ThumbnailURL = in.ThumbnailURL
	}
	if in.Categories != nil {
		b.Categories = in.Categories
	}
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, s.mapRepoErr(err, id)
	}
	return b, nil
}

// SetStatus publishes or unpublishes a post. Admin only.
func (s *BlogService) SetStatus(ctx context.Context, id, status string, actor entity.Identity) error {
	if !policy.Allowed(actor, policy.ActionPublishBlog, nil) {
		return denied("only admins may publish or unpublish blog posts")
	}
	st, err := entity.ParseBlogStatus(status)
	if err != nil {
		return validationf("status", "must be draft or published")
	}
	if err := s.Repo.UpdateStatus(ctx, id, st); err != nil {
		return s.mapRepoErr(err, id)
	}
	return nil
}

// Delete removes a post permanently. Admin only.
func (s *BlogService) Delete(ctx context.Context, id string, actor entity.Identity) error {
	if !policy.Allowed(actor, policy.ActionDeleteBlog, nil) {
		return denied("only admins may delete blog posts")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.mapRepoErr(err, id)
	}
	return nil
}

// Get fetches one post. Drafts are hidden from unauthenticated callers,
// surfacing as NotFound just like in the public listing.
func (s *BlogService) Get(ctx context.Context, id string, publicOnly bool) (*entity.Blog, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if publicOnly && b.Status != entity.BlogPublished {
		return nil, notFound("blog", id)
	}
	return b, nil
}

// List returns posts filtered by status. Unauthenticated callers only see
// published posts; the handler passes publicOnly accordingly.
func (s *BlogService) List(ctx context.Context, status string, page, limit int, publicOnly bool) ([]*entity.Blog, int, error) {
	f := repository.BlogFilter{Page: normPage(page), Limit: normLimit(limit)}
	if publicOnly {
		f.Status = entity.BlogPublished
	} else if status != "" {
		st, err := entity.ParseBlogStatus(status)
		if err != nil {
			return nil, 0, validationf("status", "unknown blog status %q", status)
		}
		f.Status = st
	}
	return s.Repo.List(ctx, f)
}

func (s *BlogService) get(ctx context.Context, id string) (*entity.Blog, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(err, id)
	}
	return b, nil
}

func (s *BlogService) mapRepoErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("blog", id)
	}
	return err
}

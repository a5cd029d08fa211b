package repository

import (
	"context"

	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
)

// BlogFilter narrows List results. Zero values mean "no filter".
type BlogFilter struct {
	Status entity.BlogStatus
	Page   int
	Limit  int
}

// BlogRepository defines storage operations for blog posts.
type BlogRepository interface {
	Create(ctx context.Context, b *entity.Blog) error
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	List(ctx context.Context, f BlogFilter) ([]*entity.Blog, int, error)
	Update(ctx context.Context, b *entity.Blog) error
	UpdateStatus(ctx context.Context, id string, status entity.BlogStatus) error
	Delete(ctx context.Context, id string) error
}

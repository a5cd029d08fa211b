package entity

import (
	"fmt"
	"strings"
	"time"
)

// BlogStatus gates public visibility. Volunteers write drafts; only admins
// publish, unpublish, or delete.
type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

func ParseBlogStatus(s string) (BlogStatus, error) {
	switch BlogStatus(strings.ToLower(strings.TrimSpace(s))) {
	case BlogDraft:
		return BlogDraft, nil
	case BlogPublished:
		return BlogPublished, nil
	}
	return "", fmt.Errorf("unknown blog status %q", s)
}

// Blog is a content post managed from the volunteer/admin dashboards.
type Blog struct {
	ID           string
	Title        string
	Content      string
	ThumbnailURL string
	Status       BlogStatus
	Categories   []string
	AuthorName   string
	AuthorEmail  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/response"
	"github.com/bloodlink/bloodlink-api/pkg/validation"
)

type BlogHandler struct {
	Svc *application.BlogService
}

func NewBlogHandler(svc *application.BlogService) *BlogHandler {
	return &BlogHandler{Svc: svc}
}

type blogPayload struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Categories   []string `json:"categories"`
}

func (p blogPayload) input() application.BlogInput {
	return application.BlogInput{
		Title:        p.Title,
		Content:      p.Content,
		ThumbnailURL: p.ThumbnailURL,
		Categories:   p.Categories,
	}
}

func (h *BlogHandler) Create(c *gin.Context) {
	var req blogPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	b, err := h.Svc.Create(c.Request.Context(), req.input(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, blogView(b), "blog post created", nil)
}

func (h *BlogHandler) Edit(c *gin.Context) {
	var req blogPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	b, err := h.Svc.Edit(c.Request.Context(), c.Param("id"), req.input(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, blogView(b), "blog post updated", nil)
}

func (h *BlogHandler) SetStatus(c *gin.Context) {
	var req statusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status, actor); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "blog status updated", nil)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "blog post deleted", nil)
}

// Get fetches one post. Drafts are only visible to authenticated callers.
func (h *BlogHandler) Get(c *gin.Context) {
	_, authed := middleware.ActorFrom(c)
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"), !authed)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, blogView(b), "blog post", nil)
}

// List returns posts. Unauthenticated callers only see published posts.
func (h *BlogHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	_, authed := middleware.ActorFrom(c)
	bs, total, err := h.Svc.List(c.Request.Context(), c.Query("status"), page, limit, !authed)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(bs))
	for _, b := range bs {
		out = append(out, blogView(b))
	}
	response.Success(c, http.StatusOK, out, "blog posts", pageMeta(page, limit, total))
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/container"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
)

// BlogModule wires content routes. Reads are public but drafts are only
// visible to authenticated staff, so both run behind the optional identity
// middleware.
type BlogModule struct {
	Handler *handlers.BlogHandler
}

func NewBlogModule(h *handlers.BlogHandler) *BlogModule {
	return &BlogModule{Handler: h}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	optional := middleware.OptionalIdentity(container.GetVerifier(), container.GetResolver())

	rg.GET("/blogs", browseLimiter, optional, m.Handler.List)
	rg.GET("/blogs/:id", browseLimiter, optional, m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.Identity(container.GetVerifier(), container.GetResolver()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByActor(), nil))
	{
		auth.POST("/blogs", m.Handler.Create)
		auth.PUT("/blogs/:id", m.Handler.Edit)
		auth.PATCH("/blogs/:id/status", m.Handler.SetStatus)
		auth.DELETE("/blogs/:id", m.Handler.Delete)
	}
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/container"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
)

// RequestModule wires the donation-request lifecycle routes.
// Public: GET /api/donation-requests, GET /api/donation-requests/:id,
// GET /api/donation-requests/by-donor/:email
// Protected: POST /api/donation-requests, GET /api/donation-requests/mine,
// PUT|PATCH /api/donation-requests/:id, PATCH /api/donation-requests/:id/status,
// DELETE /api/donation-requests/:id
type RequestModule struct {
	Handler *handlers.RequestHandler
}

func NewRequestModule(h *handlers.RequestHandler) *RequestModule {
	return &RequestModule{Handler: h}
}

func (m *RequestModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/donation-requests", browseLimiter, m.Handler.List)
	rg.GET("/donation-requests/:id", browseLimiter, m.Handler.Get)
	rg.GET("/donation-requests/by-donor/:email", browseLimiter, m.Handler.ByRequester)

	auth := rg.Group("/")
	auth.Use(middleware.Identity(container.GetVerifier(), container.GetResolver()))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByActor(), nil),
	)
	{
		auth.POST("/donation-requests", m.Handler.Create)
		auth.GET("/donation-requests/mine", m.Handler.Mine)
		auth.PUT("/donation-requests/:id", m.Handler.Edit)
		auth.PATCH("/donation-requests/:id", m.Handler.Edit)
		auth.PATCH("/donation-requests/:id/status", m.Handler.Transition)
		auth.DELETE("/donation-requests/:id", m.Handler.Delete)
	}
}

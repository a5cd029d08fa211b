package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/container"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
)

// FundModule wires the funding ledger.
// Public: GET /api/funds
// Protected: POST /api/funds
type FundModule struct {
	Handler *handlers.FundHandler
}

func NewFundModule(h *handlers.FundHandler) *FundModule {
	return &FundModule{Handler: h}
}

func (m *FundModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/funds", browseLimiter, m.Handler.List)

	auth := rg.Group("/")
	auth.Use(middleware.Identity(container.GetVerifier(), container.GetResolver()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByActor(), nil))
	{
		auth.POST("/funds", m.Handler.Record)
	}
}

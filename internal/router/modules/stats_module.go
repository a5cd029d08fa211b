package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/container"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
)

// StatsModule wires the admin dashboard aggregates.
type StatsModule struct {
	Handler *handlers.StatsHandler
}

func NewStatsModule(h *handlers.StatsHandler) *StatsModule {
	return &StatsModule{Handler: h}
}

func (m *StatsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Identity(container.GetVerifier(), container.GetResolver()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByActor(), nil))
	{
		auth.GET("/stats/admin", m.Handler.Admin)
	}
}

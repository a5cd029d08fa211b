package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/container"
	handlers "github.com/bloodlink/bloodlink-api/internal/interface/http"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
)

// UserModule wires registration, profile, admin user management, and the
// public donor search.
// Public: GET /api/donors/search
// Token only: POST /api/users/register
// Protected: GET|PUT /api/profile, GET /api/users, PATCH /api/users/:id/role,
// PATCH /api/users/:id/status
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	searchLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/donors/search", searchLimiter, m.Handler.SearchDonors)
	rg.POST("/users/register", registerLimiter, middleware.TokenOnly(container.GetVerifier()), m.Handler.Register)

	auth := rg.Group("/")
	auth.Use(middleware.Identity(container.GetVerifier(), container.GetResolver()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByActor(), nil))
	{
		auth.GET("/profile", m.Handler.Me)
		auth.PUT("/profile", m.Handler.UpdateMe)
		auth.GET("/users", m.Handler.List)
		auth.PATCH("/users/:id/role", m.Handler.ChangeRole)
		auth.PATCH("/users/:id/status", m.Handler.ChangeStatus)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/response"
)

type StatsHandler struct {
	Svc *application.StatsService
}

func NewStatsHandler(svc *application.StatsService) *StatsHandler {
	return &StatsHandler{Svc: svc}
}

// Admin serves the admin dashboard numbers.
func (h *StatsHandler) Admin(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	stats, err := h.Svc.Admin(c.Request.Context(), actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "platform statistics", nil)
}

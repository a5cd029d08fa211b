package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/response"
	"github.com/bloodlink/bloodlink-api/pkg/validation"
)

type FundHandler struct {
	Svc *application.FundService
}

func NewFundHandler(svc *application.FundService) *FundHandler {
	return &FundHandler{Svc: svc}
}

type fundPayload struct {
	AmountCents int64  `json:"amount_cents" binding:"nonzero"`
	Currency    string `json:"currency"`
}

func (h *FundHandler) Record(c *gin.Context) {
	var req fundPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	f, err := h.Svc.Record(c.Request.Context(), application.FundInput{AmountCents: req.AmountCents, Currency: req.Currency}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, fundView(f), "contribution recorded", nil)
}

func (h *FundHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	fs, total, err := h.Svc.List(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(fs))
	for _, f := range fs {
		out = append(out, fundView(f))
	}
	totalCents, err := h.Svc.TotalCents(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	meta := pageMeta(page, limit, total)
	meta["total_cents"] = totalCents
	response.Success(c, http.StatusOK, out, "contributions", meta)
}

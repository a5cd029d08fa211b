package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/domain/entity"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/response"
	"github.com/bloodlink/bloodlink-api/pkg/validation"
)

const dateLayout = "2006-01-02"

// RequestHandler exposes the donation-request lifecycle over HTTP. All
// authorization decisions live in the service; the handler only binds input
// and resolves the acting identity from the context.
type RequestHandler struct {
	Svc    *application.RequestService
	Logger *logrus.Logger
}

func NewRequestHandler(svc *application.RequestService, logger *logrus.Logger) *RequestHandler {
	return &RequestHandler{Svc: svc, Logger: logger}
}

type createRequestPayload struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	District      string `json:"district" binding:"required"`
	Upazila       string `json:"upazila" binding:"required"`
	HospitalName  string `json:"hospital_name" binding:"required"`
	FullAddress   string `json:"full_address" binding:"required"`
	BloodGroup    string `json:"blood_group" binding:"required,bloodgroup"`
	DonationDate  string `json:"donation_date" binding:"required"`
	DonationTime  string `json:"donation_time" binding:"required"`
	Message       string `json:"message"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req createRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	date, err := time.Parse(dateLayout, req.DonationDate)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"donation_date": "must be formatted as YYYY-MM-DD"})
		return
	}
	actor, _ := middleware.ActorFrom(c)

	r, err := h.Svc.Create(c.Request.Context(), application.CreateRequestInput{
		RecipientName: req.RecipientName,
		District:      req.District,
		Upazila:       req.Upazila,
		HospitalName:  req.HospitalName,
		FullAddress:   req.FullAddress,
		BloodGroup:    req.BloodGroup,
		DonationDate:  date,
		DonationTime:  req.DonationTime,
		Message:       req.Message,
	}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, requestView(r), "donation request created", nil)
}

func (h *RequestHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	rs, total, err := h.Svc.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestViews(rs), "donation requests", pageMeta(page, limit, total))
}

func (h *RequestHandler) Get(c *gin.Context) {
	r, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestView(r), "donation request", nil)
}

// Mine lists the acting user's own requests regardless of status.
func (h *RequestHandler) Mine(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	rs, err := h.Svc.ListByRequester(c.Request.Context(), actor.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestViews(rs), "donation requests", nil)
}

// ByRequester lists the requests created by the given requester email.
func (h *RequestHandler) ByRequester(c *gin.Context) {
	rs, err := h.Svc.ListByRequester(c.Request.Context(), c.Param("email"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestViews(rs), "donation requests", nil)
}

type editRequestPayload struct {
	RecipientName *string `json:"recipient_name"`
	District      *string `json:"district"`
	Upazila       *string `json:"upazila"`
	HospitalName  *string `json:"hospital_name"`
	FullAddress   *string `json:"full_address"`
	BloodGroup    *string `json:"blood_group"`
	DonationDate  *string `json:"donation_date"`
	DonationTime  *string `json:"donation_time"`
	Message       *string `json:"message"`
}

// Edit patches the editable fields. Absent fields are left untouched, so the
// same handler serves both PUT and PATCH.
func (h *RequestHandler) Edit(c *gin.Context) {
	var req editRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	patch := application.EditRequestInput{
		RecipientName: req.RecipientName,
		District:      req.District,
		Upazila:       req.Upazila,
		HospitalName:  req.HospitalName,
		FullAddress:   req.FullAddress,
		BloodGroup:    req.BloodGroup,
		DonationTime:  req.DonationTime,
		Message:       req.Message,
	}
	if req.DonationDate != nil {
		date, err := time.Parse(dateLayout, *req.DonationDate)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"donation_date": "must be formatted as YYYY-MM-DD"})
			return
		}
		patch.DonationDate = &date
	}
	actor, _ := middleware.ActorFrom(c)

	r, err := h.Svc.Edit(c.Request.Context(), c.Param("id"), patch, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestView(r), "donation request updated", nil)
}

type transitionPayload struct {
	Status     string `json:"status" binding:"required"`
	DonorName  string `json:"donor_name"`
	DonorEmail string `json:"donor_email"`
}

// Transition moves a request along the lifecycle. Claiming a pending request
// requires donor_name and donor_email in the payload.
func (h *RequestHandler) Transition(c *gin.Context) {
	var req transitionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	target, err := entity.ParseRequestStatus(req.Status)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"status": "must be pending, inprogress, done, or canceled"})
		return
	}
	var donor *application.DonorInfo
	if req.DonorName != "" || req.DonorEmail != "" {
		donor = &application.DonorInfo{Name: req.DonorName, Email: req.DonorEmail}
	}
	actor, _ := middleware.ActorFrom(c)

	r, err := h.Svc.Transition(c.Request.Context(), c.Param("id"), target, actor, donor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requestView(r), "donation request updated", nil)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "donation request deleted", nil)
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

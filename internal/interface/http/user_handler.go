package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/internal/interface/middleware"
	"github.com/bloodlink/bloodlink-api/pkg/response"
	"github.com/bloodlink/bloodlink-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerPayload struct {
	Name       string `json:"name" binding:"required"`
	AvatarURL  string `json:"avatar_url"`
	BloodGroup string `json:"blood_group" binding:"required,bloodgroup"`
	District   string `json:"district" binding:"required"`
	Upazila    string `json:"upazila" binding:"required"`
}

// Register creates the profile for the token's subject. The email always
// comes from the verified claims, never the payload, so a caller cannot
// register on someone else's behalf.
func (h *UserHandler) Register(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}
	var req registerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:      claims.Email,
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		BloodGroup: req.BloodGroup,
		District:   req.District,
		Upazila:    req.Upazila,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, userView(u), "profile registered", nil)
}

// Me returns the acting user's stored profile.
func (h *UserHandler) Me(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	u, err := h.Svc.GetByEmail(c.Request.Context(), actor.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile", nil)
}

// UpdateMe replaces the acting user's editable profile fields. The same
// payload shape as registration; email stays with the token claims.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req registerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	u, err := h.Svc.UpdateProfile(c.Request.Context(), actor.Email, application.ProfileUpdateInput{
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		BloodGroup: req.BloodGroup,
		District:   req.District,
		Upazila:    req.Upazila,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile updated", nil)
}

// List serves the admin user dashboard, filterable by account status.
func (h *UserHandler) List(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)
	us, total, err := h.Svc.List(c.Request.Context(), c.Query("status"), page, limit, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(us))
	for _, u := range us {
		out = append(out, userView(u))
	}
	response.Success(c, http.StatusOK, out, "users", pageMeta(page, limit, total))
}

type rolePayload struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req rolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.ChangeRole(c.Request.Context(), c.Param("id"), req.Role, actor); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "role updated", nil)
}

type statusPayload struct {
	Status string `json:"status" binding:"required"`
}

func (h *UserHandler) ChangeStatus(c *gin.Context) {
	var req statusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	actor, _ := middleware.ActorFrom(c)
	if err := h.Svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, actor); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "account status updated", nil)
}

// SearchDonors is the public donor search. All three query parameters are
// required.
func (h *UserHandler) SearchDonors(c *gin.Context) {
	us, err := h.Svc.SearchDonors(c.Request.Context(), c.Query("blood_group"), c.Query("district"), c.Query("upazila"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(us))
	for _, u := range us {
		out = append(out, donorView(u))
	}
	response.Success(c, http.StatusOK, out, "donors", nil)
}

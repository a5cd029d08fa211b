package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodlink/bloodlink-api/internal/application"
	"github.com/bloodlink/bloodlink-api/pkg/response"
)

// writeServiceError maps the application error taxonomy onto HTTP statuses:
// validation 400, access denied 403, invalid state 409, not found 404,
// anything else 500. Every handler funnels service errors through here so an
// illegal transition can never leak as a generic 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case application.IsValidation(err):
		var verr *application.ValidationError
		var details any
		if errors.As(err, &verr) {
			details = verr.Fields
		}
		response.Error[any](c, http.StatusBadRequest, "validation failed", details)
	case application.IsAccessDenied(err):
		response.Error[any](c, http.StatusForbidden, err.Error(), nil)
	case application.IsInvalidState(err):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case application.IsNotFound(err):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

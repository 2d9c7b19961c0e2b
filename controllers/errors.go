package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dino-reserve/middlewares"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
)

var errInternal = errors.New("internal server error")

// statusFor maps a service error onto the HTTP status the API reports.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrCapacityExceeded):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Unexpected errors
// are logged and hidden behind a generic message unless debug is set.
func respondServiceError(c *gin.Context, err error, debug bool) {
	code := statusFor(err)
	if code != http.StatusInternalServerError {
		utils.RespondError(c, code, err)
		return
	}

	utils.ErrorLogger.WithFields(logrus.Fields{
		"request_id": middlewares.RequestID(c),
		"path":       c.Request.URL.Path,
	}).WithError(err).Error("request failed")

	if debug {
		utils.RespondError(c, code, err)
		return
	}
	utils.RespondError(c, code, errInternal)
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusUnprocessableEntity, err)
}

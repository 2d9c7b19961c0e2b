package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

var errCleanupNotConfirmed = errors.New(`cleanup deletes data permanently; repeat the request with "confirm": true`)

type AdminController struct {
	DB           *gorm.DB
	Reservations *services.ReservationService
	Reports      *services.ReportService
	Debug        bool
}

func NewAdminController(db *gorm.DB, clock services.Clock, pub services.Publisher) *AdminController {
	return &AdminController{
		DB:           db,
		Reservations: services.NewReservationService(db, clock, pub),
		Reports:      services.NewReportService(db, clock),
	}
}

// GetStats -> GET /admin/stats
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.Reports.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, ac.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation statistics", stats)
}

// GetOccupancy -> GET /admin/occupancy
func (ac *AdminController) GetOccupancy(c *gin.Context) {
	rows, err := ac.Reports.Occupancy(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, ac.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Occupancy by restaurant", rows)
}

type cleanupRequest struct {
	OlderThanDays *int `json:"older_than_days" binding:"required"`
	Confirm       bool `json:"confirm"`
}

// CleanupReservations -> POST /admin/reservations/cleanup
func (ac *AdminController) CleanupReservations(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.Confirm {
		pending, err := ac.Reservations.CountPurgeable(c.Request.Context(), *req.OlderThanDays)
		if err != nil {
			respondServiceError(c, err, ac.Debug)
			return
		}
		c.JSON(http.StatusUnprocessableEntity, utils.JSONResponse{
			Status:  false,
			Message: errCleanupNotConfirmed.Error(),
			Data:    gin.H{"pending": pending},
		})
		return
	}

	deleted, err := ac.Reservations.Purge(c.Request.Context(), *req.OlderThanDays)
	if err != nil {
		respondServiceError(c, err, ac.Debug)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"admin":   c.GetString("admin_subject"),
		"deleted": deleted,
	}).Info("Admin cleanup executed")
	utils.RespondJSON(c, http.StatusOK, "Old cancelled reservations deleted", gin.H{"deleted": deleted})
}

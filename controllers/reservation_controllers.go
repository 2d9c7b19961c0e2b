package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

type ReservationController struct {
	DB           *gorm.DB
	Reservations *services.ReservationService
	Reports      *services.ReportService
	Location     *time.Location
	Debug        bool
}

func NewReservationController(db *gorm.DB, clock services.Clock, pub services.Publisher) *ReservationController {
	return &ReservationController{
		DB:           db,
		Reservations: services.NewReservationService(db, clock, pub),
		Reports:      services.NewReportService(db, clock),
		Location:     clock.Location,
	}
}

type createReservationRequest struct {
	TableID         uint   `json:"table_id" binding:"required"`
	CustomerName    string `json:"customer_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	PartySize       int    `json:"party_size" binding:"required,min=1"`
	ReservationTime string `json:"reservation_time" binding:"required"`
}

type updateReservationRequest struct {
	CustomerName    *string `json:"customer_name"`
	Phone           *string `json:"phone"`
	PartySize       *int    `json:"party_size"`
	ReservationTime *string `json:"reservation_time"`
	Status          *string `json:"status"`
}

func (req updateReservationRequest) patch(loc *time.Location) (services.ReservationPatch, error) {
	p := services.ReservationPatch{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Status:       req.Status,
	}
	if req.ReservationTime != nil {
		at, err := parseTimestamp("reservation_time", *req.ReservationTime, loc)
		if err != nil {
			return p, err
		}
		p.ReservationTime = &at
	}
	return p, nil
}

// CreateReservation -> POST /reservations
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	at, err := parseTimestamp("reservation_time", req.ReservationTime, rc.Location)
	if err != nil {
		respondBindError(c, err)
		return
	}

	res, err := rc.Reservations.Create(c.Request.Context(), services.CreateReservationInput{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		PartySize:       req.PartySize,
		ReservationTime: at,
	})
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation created successfully", res)
}

func (rc *ReservationController) bindPatch(c *gin.Context) (uint, services.ReservationPatch, bool) {
	id, err := parseID(c, "id")
	if err != nil {
		respondBindError(c, err)
		return 0, services.ReservationPatch{}, false
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return 0, services.ReservationPatch{}, false
	}
	patch, err := req.patch(rc.Location)
	if err != nil {
		respondBindError(c, err)
		return 0, services.ReservationPatch{}, false
	}
	return id, patch, true
}

// UpdateReservation -> PUT /reservations/:id
//
// Applies the supplied fields as-is. Capacity and slot conflicts are not
// re-checked; use RebookReservation for a validated change.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, patch, ok := rc.bindPatch(c)
	if !ok {
		return
	}
	res, err := rc.Reservations.Correct(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", res)
}

// RebookReservation -> POST /reservations/:id/rebook
func (rc *ReservationController) RebookReservation(c *gin.Context) {
	id, patch, ok := rc.bindPatch(c)
	if !ok {
		return
	}
	res, err := rc.Reservations.Rebook(c.Request.Context(), id, patch)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation rebooked successfully", res)
}

// CancelReservation -> DELETE /reservations/:id
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}
	res, err := rc.Reservations.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled successfully", gin.H{
		"message": "Reservation cancelled successfully",
		"id":      res.ID,
	})
}

// GetReservation -> GET /reservations/:id
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}
	res, err := rc.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation details", res)
}

// GetReservations -> GET /reservations?restaurant_id=&status=&limit=&offset=
func (rc *ReservationController) GetReservations(c *gin.Context) {
	restaurantID, err := queryInt(c, "restaurant_id", 0)
	if err == nil && restaurantID < 0 {
		err = &services.ValidationError{Field: "restaurant_id", Reason: "must not be negative"}
	}
	if err != nil {
		respondBindError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondBindError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondBindError(c, err)
		return
	}

	reservations, err := rc.Reports.ListReservations(c.Request.Context(), services.ReservationFilter{
		RestaurantID: uint(restaurantID),
		Status:       c.Query("status"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// GetUpcomingReservations -> GET /reservations/upcoming?days=
func (rc *ReservationController) GetUpcomingReservations(c *gin.Context) {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		respondBindError(c, err)
		return
	}
	reservations, err := rc.Reports.Upcoming(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Upcoming reservations", reservations)
}

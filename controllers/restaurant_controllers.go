package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB      *gorm.DB
	Reports *services.ReportService
	Debug   bool
}

func NewRestaurantController(db *gorm.DB, clock services.Clock) *RestaurantController {
	return &RestaurantController{DB: db, Reports: services.NewReportService(db, clock)}
}

// GetAllRestaurants -> GET /restaurants
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	restaurants, err := rc.Reports.ListRestaurants(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurant -> GET /restaurants/:id
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}
	restaurant, err := rc.Reports.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant details", restaurant)
}

// GetRestaurantTables -> GET /restaurants/:id/tables
//
// A table counts as reserved when it holds any active reservation from the
// start of today onwards.
func (rc *RestaurantController) GetRestaurantTables(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}
	_, board, err := rc.Reports.TableBoard(c.Request.Context(), id, services.WholeDay)
	if err != nil {
		respondServiceError(c, err, rc.Debug)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", board)
}

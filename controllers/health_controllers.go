package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

type HealthController struct {
	DB          *gorm.DB
	ServiceName string
	Version     string
}

func NewHealthController(db *gorm.DB, name, version string) *HealthController {
	return &HealthController{DB: db, ServiceName: name, Version: version}
}

// Root -> GET /
func (hc *HealthController) Root(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Welcome to "+hc.ServiceName+" API", gin.H{"version": hc.Version})
}

// Health -> GET /health
func (hc *HealthController) Health(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "healthy", gin.H{
		"service":   hc.ServiceName,
		"version":   hc.Version,
		"timestamp": time.Now().UTC(),
	})
}

// DatabaseHealth -> GET /health/db
func (hc *HealthController) DatabaseHealth(c *gin.Context) {
	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("database health check failed")
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("database unreachable"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "healthy", gin.H{"database": "connected"})
}

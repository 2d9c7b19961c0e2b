package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dino-reserve/utils"
)

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := RequestID(c)
		utils.ErrorLogger.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"panic":      fmt.Sprint(recovered),
		}).Error("panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.JSONResponse{
			Status:  false,
			Message: "internal server error",
			Data:    gin.H{"request_id": requestID},
		})
	})
}

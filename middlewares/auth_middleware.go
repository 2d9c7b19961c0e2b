package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dino-reserve/utils"
)

var errAdminDisabled = errors.New("admin API is disabled: ADMIN_JWT_SECRET is not set")

// AdminAuthMiddleware admits requests bearing a valid admin token signed
// with secret. An empty secret disables the guarded routes entirely.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			utils.AbortWithError(c, http.StatusServiceUnavailable, errAdminDisabled)
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Authorization header must use the Bearer scheme"))
			return
		}

		claims, err := utils.ParseAdminToken(key, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, err)
			return
		}
		if claims.Role != utils.RoleAdmin {
			utils.AbortWithError(c, http.StatusForbidden, errors.New("admin access required"))
			return
		}

		c.Set("admin_subject", claims.Subject)
		c.Next()
	}
}

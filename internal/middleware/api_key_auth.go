package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"hospital-capacity-backend/internal/config"
	"hospital-capacity-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards the capacity update endpoint with a shared secret.
// When no key is configured, writes are refused in release mode and allowed
// with a warning otherwise.
func APIKeyAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Capacity.APIKey == "" {
			if cfg.Server.GinMode == "release" {
				utils.ErrorResponse(c, http.StatusForbidden, "API key not configured, writes disabled in release mode")
				c.Abort()
				return
			}
			log.Println("Security warning: capacity update called without API key configured (allowed in debug)")
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Capacity.APIKey)) != 1 {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hospital-capacity-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/capacity/update", APIKeyAuth(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doPost(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/capacity/update", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Capacity.APIKey = "secret"

	assert.Equal(t, http.StatusOK, doPost(authRouter(cfg), "secret").Code)
}

func TestAPIKeyAuthInvalidKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Capacity.APIKey = "secret"

	assert.Equal(t, http.StatusUnauthorized, doPost(authRouter(cfg), "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, doPost(authRouter(cfg), "").Code)
}

func TestAPIKeyAuthNoKeyConfiguredInDebug(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.GinMode = "debug"

	assert.Equal(t, http.StatusOK, doPost(authRouter(cfg), "").Code)
}

func TestAPIKeyAuthNoKeyConfiguredInRelease(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.GinMode = "release"

	assert.Equal(t, http.StatusForbidden, doPost(authRouter(cfg), "").Code)
}

package handler

import (
	"net/http"

	"hospital-capacity-backend/internal/events"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db           *gorm.DB
	nats         *events.Client
	natsRequired bool
}

func NewHealthHandler(db *gorm.DB, nats *events.Client, natsRequired bool) *HealthHandler {
	return &HealthHandler{
		db:           db,
		nats:         nats,
		natsRequired: natsRequired,
	}
}

// Health reports service liveness with collaborator connectivity
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	dbOk := h.pingDB()
	natsOk := h.nats.IsConnected()

	status := "ok"
	code := http.StatusOK
	if !dbOk || (h.natsRequired && !natsOk) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"db":     connState(dbOk),
		"nats":   connState(natsOk),
	})
}

// Ready reports whether the service can accept traffic
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.pingDB() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "DB unreachable"})
		return
	}
	if h.natsRequired && !h.nats.IsConnected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "NATS unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) pingDB() bool {
	if h.db == nil {
		return false
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

func connState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /health
func (h *Handler) Healthz(c *gin.Context) {
	if h.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	checks := h.Health.Ping(c.Request.Context())
	status := http.StatusOK
	for _, state := range checks {
		if state != "ok" {
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}

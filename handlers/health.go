package handlers

import (
	"net/http"

	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health with the last dependency check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo == nil || *status.Mongo
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": status})
}

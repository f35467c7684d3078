package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dialoguecafe/database"
	"dialoguecafe/utils"
)

// Health reports liveness of the server and its backing stores.
func Health(c *gin.Context) {
	status := gin.H{"status": "ok"}

	if database.MongoClient != nil {
		if err := database.MongoClient.Ping(c.Request.Context(), nil); err != nil {
			status["status"] = "degraded"
			status["mongo"] = err.Error()
		}
	}
	if utils.CacheClient != nil {
		if err := utils.CacheClient.Ping(c.Request.Context()).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
		}
	}

	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var startTime = time.Now()

// HealthHandler provides the health endpoint.
type HealthHandler struct {
	client *mongo.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(client *mongo.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// GetHealth responds with service and record store status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storeStatus := "connected"
	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		storeStatus = "disconnected"
	}

	c.JSON(200, gin.H{
		"status": "ok",
		"uptime": int(time.Since(startTime).Seconds()),
		"store":  storeStatus,
	})
}

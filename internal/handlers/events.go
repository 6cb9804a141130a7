package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/realtime"
)

// Events upgrades the connection to a websocket change feed.
func Events(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.Serve(c.Writer, c.Request)
	}
}

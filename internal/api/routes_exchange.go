package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/handlers"
)

func registerExchangeRoutes(api *gin.RouterGroup, handler *handlers.ExchangeHandler) {
	api.GET("/export", handler.Export)
	api.POST("/import", handler.Import)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/handlers"
)

func registerSettingsRoutes(api *gin.RouterGroup, handler *handlers.SettingsHandler, security *handlers.SecurityHandler) {
	group := api.Group("/settings")
	{
		group.GET("/:key", handler.Get)
		group.PUT("/:key", handler.Put)
		group.DELETE("/:key", handler.Delete)
	}

	sec := api.Group("/security")
	{
		sec.POST("/lock", security.SetLock)
		sec.DELETE("/lock", security.ClearLock)
	}
}

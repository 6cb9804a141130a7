package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/handlers"
)

func registerStorageRoutes(api *gin.RouterGroup, handler *handlers.StorageHandler) {
	group := api.Group("/storages")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", handler.Create)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.GET("/:id/folders", handler.RootFolders)
		group.GET("/:id/folders/all", handler.AllFolders)
	}
}

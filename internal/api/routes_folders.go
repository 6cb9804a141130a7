package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/handlers"
)

func registerFolderRoutes(api *gin.RouterGroup, handler *handlers.FolderHandler) {
	group := api.Group("/folders")
	{
		group.GET("", handler.List)
		group.GET("/recent", handler.Recent)
		group.GET("/marked", handler.Marked)
		group.GET("/search", handler.Search)
		group.GET("/:id", handler.Get)
		group.GET("/:id/children", handler.Children)
		group.POST("", handler.Create)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.POST("/:id/move", handler.Move)
		group.POST("/:id/copy", handler.Copy)
		group.POST("/move-to-storage", handler.MoveToStorage)
		group.POST("/mark", handler.SetMarked)
	}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/handlers"
)

func registerProductRoutes(api *gin.RouterGroup, handler *handlers.ProductHandler) {
	// Folder-scoped listings live next to the other folder routes.
	api.GET("/folders/:id/products", handler.ListByFolder)
	api.GET("/folders/:id/products/search", handler.SearchInFolder)

	group := api.Group("/products")
	{
		group.GET("/marked", handler.Marked)
		group.GET("/:id", handler.Get)
		group.POST("", handler.Create)
		group.PATCH("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.POST("/mark", handler.SetMarked)
	}
}

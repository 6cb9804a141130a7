package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/pkg/response"
)

// Health reports service liveness and database reachability.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		dbStatus := "ok"

		if db != nil {
			if sqlDB, err := db.DB(); err != nil {
				dbStatus = "error"
				status = "degraded"
			} else if err := sqlDB.PingContext(requestContext(c)); err != nil {
				dbStatus = "error"
				status = "degraded"
			}
		}

		response.Success(c, http.StatusOK, gin.H{
			"status":   status,
			"database": dbStatus,
		})
	}
}

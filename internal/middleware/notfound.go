package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/response"
)

// NotFoundHandler renders the standard error envelope for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, apperrors.ErrNotFound.WithMessage("route not found"))
}

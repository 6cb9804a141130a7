package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stowagehq/stowage/internal/auth"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/logger"
	"github.com/stowagehq/stowage/pkg/response"
)

// LockChecker reports whether the access lock is currently enabled.
type LockChecker interface {
	LockEnabled(ctx context.Context) (bool, error)
}

// AccessLock guards API routes with a bearer token when a lock password is
// configured. With no lock set, every request passes through.
func AccessLock(tokens *auth.TokenService, locks LockChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, err := locks.LockEnabled(c.Request.Context())
		if err != nil {
			logger.WithModule("auth").Error("lock lookup failed", zap.Error(err))
			response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}
		if !enabled {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if err := tokens.Verify(token); err != nil {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

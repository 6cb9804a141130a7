package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/auth"
	"github.com/stowagehq/stowage/internal/services"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/metrics"
	"github.com/stowagehq/stowage/pkg/response"
)

// SecurityHandler manages the optional access lock and the unlock flow.
type SecurityHandler struct {
	settings *services.SettingsService
	tokens   *auth.TokenService
}

// NewSecurityHandler constructs a security handler.
func NewSecurityHandler(settings *services.SettingsService, tokens *auth.TokenService) *SecurityHandler {
	return &SecurityHandler{settings: settings, tokens: tokens}
}

// Status reports whether the access lock is enabled. Public so clients can
// decide whether to show the unlock screen.
func (h *SecurityHandler) Status(c *gin.Context) {
	enabled, err := h.settings.LockEnabled(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lockEnabled": enabled})
}

// Unlock exchanges the lock password for a bearer token.
func (h *SecurityHandler) Unlock(c *gin.Context) {
	var payload unlockPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	ctx := requestContext(c)
	enabled, err := h.settings.LockEnabled(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !enabled {
		response.Error(c, apperrors.NewBadRequest("access lock is not enabled"))
		return
	}

	ok, err := h.settings.VerifyLockPassword(ctx, payload.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		metrics.UnlockAttempts.WithLabelValues("failure").Inc()
		response.Error(c, apperrors.ErrInvalidPassword)
		return
	}

	token, err := h.tokens.Issue()
	if err != nil {
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.UnlockAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, gin.H{"token": token})
}

// SetLock enables the access lock with a new password.
func (h *SecurityHandler) SetLock(c *gin.Context) {
	var payload setLockPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	if err := h.settings.SetLockPassword(requestContext(c), payload.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lockEnabled": true})
}

// ClearLock disables the access lock.
func (h *SecurityHandler) ClearLock(c *gin.Context) {
	if err := h.settings.ClearLock(requestContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lockEnabled": false})
}

type unlockPayload struct {
	Password string `json:"password" validate:"required"`
}

type setLockPayload struct {
	Password string `json:"password" validate:"required,min=4,max=128"`
}

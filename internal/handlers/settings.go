package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/response"
)

// SettingsHandler exposes the keyed JSON preference store.
type SettingsHandler struct {
	svc *services.SettingsService
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get returns one setting by key.
func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.svc.Get(requestContext(c), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, setting)
}

// Put upserts a setting. The request body is stored verbatim as the value.
func (h *SettingsHandler) Put(c *gin.Context) {
	var payload settingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid JSON payload"))
		return
	}
	if len(payload.Value) == 0 {
		response.Error(c, apperrors.NewBadRequest("value is required"))
		return
	}

	setting, err := h.svc.Put(requestContext(c), c.Param("key"), payload.Value)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, setting)
}

// Delete removes a setting by key.
func (h *SettingsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type settingPayload struct {
	Value json.RawMessage `json:"value"`
}

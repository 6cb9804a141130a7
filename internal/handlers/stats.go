package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	"github.com/stowagehq/stowage/pkg/response"
)

// StatsHandler serves the aggregated inventory overview.
type StatsHandler struct {
	svc *services.StatsService
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Overview returns dataset totals and per-storage folder counts.
func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.svc.Overview(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, overview)
}

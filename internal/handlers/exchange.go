package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stowagehq/stowage/internal/services"
	apperrors "github.com/stowagehq/stowage/pkg/errors"
	"github.com/stowagehq/stowage/pkg/response"
)

// maxImportBytes caps uploaded import payloads at 64 MiB.
const maxImportBytes = 64 << 20

// ExchangeHandler exposes bulk export and import of the whole dataset.
type ExchangeHandler struct {
	svc *services.ExchangeService
}

// NewExchangeHandler constructs an exchange handler.
func NewExchangeHandler(svc *services.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{svc: svc}
}

// Export serves the current dataset as a downloadable JSON document. The
// document is encoded in full before the first byte goes out, so a failed
// export yields an error envelope rather than a truncated download.
func (h *ExchangeHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Export(requestContext(c), &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("stowage-export-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// Import replaces the dataset from an uploaded document. The format query
// parameter selects the JSON codec (default) or the legacy SQL dump parser.
func (h *ExchangeHandler) Import(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var (
		summary *services.ImportSummary
		err     error
	)
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		summary, err = h.svc.ImportJSON(requestContext(c), body)
	case "dump":
		summary, err = h.svc.ImportDump(requestContext(c), body)
	default:
		response.Error(c, apperrors.NewBadRequest(fmt.Sprintf("unsupported import format %q", format)))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savegatehq/savegate/internal/entitlement/http/dto"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
	"github.com/savegatehq/savegate/internal/httputil"
)

// AuditHandler handles HTTP requests for reading the audit trail.
type AuditHandler struct {
	entitlementUseCase entitlementUseCase.EntitlementUseCase
	logger             *slog.Logger
}

// NewAuditHandler creates a new audit handler with required dependencies.
func NewAuditHandler(
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
) *AuditHandler {
	return &AuditHandler{
		entitlementUseCase: entitlementUseCase,
		logger:             logger,
	}
}

// ListHandler retrieves audit entries with pagination support.
// GET /v1/audit/entries?offset=0&limit=50 - Requires an admin token.
// Returns 200 OK with entries ordered newest first plus the total count.
func (h *AuditHandler) ListHandler(c *gin.Context) {
	// Parse offset and limit query parameters
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.entitlementUseCase.ListAuditEntries(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total, err := h.entitlementUseCase.CountAuditEntries(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAuditEntriesToListResponse(entries, total)
	c.JSON(http.StatusOK, response)
}

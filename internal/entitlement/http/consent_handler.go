package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savegatehq/savegate/internal/entitlement/http/dto"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
	"github.com/savegatehq/savegate/internal/httputil"
	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// ConsentHandler handles HTTP requests for consent records. Modifying actions
// stay denied until the front end records consent through this surface.
type ConsentHandler struct {
	entitlementUseCase entitlementUseCase.EntitlementUseCase
	logger             *slog.Logger
}

// NewConsentHandler creates a new consent handler with required dependencies.
func NewConsentHandler(
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
) *ConsentHandler {
	return &ConsentHandler{
		entitlementUseCase: entitlementUseCase,
		logger:             logger,
	}
}

// RecordHandler records that the user accepted the consent text for a game scope.
// POST /v1/consent
// Returns 204 No Content. Recording again replaces the previous record.
func (h *ConsentHandler) RecordHandler(c *gin.Context) {
	var req dto.RecordConsentRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.entitlementUseCase.RecordConsent(
		c.Request.Context(),
		req.GameScope,
		req.ConsentVersion,
		req.ConsentTextHash,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return 204 No Content with empty body
	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetHandler retrieves the consent record for a game scope.
// GET /v1/consent?game_scope=skyrim
// Returns 200 OK with the record and whether it satisfies the consent version
// this build ships. Returns 404 when no consent was ever recorded.
func (h *ConsentHandler) GetHandler(c *gin.Context) {
	gameScope := c.Query("game_scope")
	if gameScope == "" {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("game_scope query parameter is required"),
			h.logger,
		)
		return
	}

	record, err := h.entitlementUseCase.GetConsent(c.Request.Context(), gameScope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	current, err := h.entitlementUseCase.HasConsent(c.Request.Context(), gameScope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapConsentToResponse(record, current)
	c.JSON(http.StatusOK, response)
}

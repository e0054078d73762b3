// Package http provides HTTP handlers for entitlement operations.
// Every decision endpoint delegates to the entitlement use case, which owns
// the check order, the consent gate, and the audit trail.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	adminHTTP "github.com/savegatehq/savegate/internal/admintoken/http"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	"github.com/savegatehq/savegate/internal/entitlement/http/dto"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
	"github.com/savegatehq/savegate/internal/httputil"
	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// EntitlementHandler handles HTTP requests for entitlement decisions and
// capability lifecycle operations.
type EntitlementHandler struct {
	entitlementUseCase entitlementUseCase.EntitlementUseCase
	logger             *slog.Logger
}

// NewEntitlementHandler creates a new entitlement handler with required dependencies.
func NewEntitlementHandler(
	entitlementUseCase entitlementUseCase.EntitlementUseCase,
	logger *slog.Logger,
) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementUseCase: entitlementUseCase,
		logger:             logger,
	}
}

// CheckHandler decides whether an action is allowed for a game scope.
// POST /v1/entitlements/check
// Returns 200 OK with the capability that allowed the action. Denials map to
// 401/403/404 with a stable human-readable message.
func (h *EntitlementHandler) CheckHandler(c *gin.Context) {
	var req dto.CheckEntitlementRequest

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

	// Unknown actions deny instead of silently matching nothing
	action, err := entitlementDomain.ParseAction(req.Action)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	capability, err := h.entitlementUseCase.CheckEntitlement(c.Request.Context(), action, req.GameScope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapCapabilityToResponse(capability)
	c.JSON(http.StatusOK, response)
}

// GrantHandler issues and stores a new signed capability.
// POST /v1/entitlements/grant - Requires an admin token.
// Returns 201 Created with the granted capability.
func (h *EntitlementHandler) GrantHandler(c *gin.Context) {
	var req dto.GrantCapabilityRequest

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

	action, err := entitlementDomain.ParseAction(req.Action)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// A scoped admin session cannot grant outside its own game.
	if token, ok := adminHTTP.GetAdminToken(c.Request.Context()); ok && token != nil {
		if !token.CoversScope(req.GameScope) {
			httputil.HandleErrorGin(c, adminDomain.ErrScopeNotCovered, h.logger)
			return
		}
	}

	var lifetime *time.Duration
	if req.LifetimeSeconds != nil {
		d := time.Duration(*req.LifetimeSeconds) * time.Second
		lifetime = &d
	}

	capability, err := h.entitlementUseCase.GrantCapability(c.Request.Context(), action, req.GameScope, lifetime)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapCapabilityToResponse(capability)
	c.JSON(http.StatusCreated, response)
}

// RevokeHandler revokes a capability by ID.
// POST /v1/entitlements/revoke - Requires an admin token.
// Returns 204 No Content. Revoking an already revoked or unknown capability
// succeeds too; revocation is idempotent.
func (h *EntitlementHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeCapabilityRequest

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

	if err := h.entitlementUseCase.RevokeCapability(c.Request.Context(), req.CapabilityID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	// Return 204 No Content with empty body
	c.Data(http.StatusNoContent, "application/json", nil)
}

// PurgeHandler removes expired and revoked capabilities from the store.
// POST /v1/entitlements/purge - Requires an admin token.
// Returns 200 OK with the number of rows removed.
func (h *EntitlementHandler) PurgeHandler(c *gin.Context) {
	purged, err := h.entitlementUseCase.PurgeExpired(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.PurgeResponse{Purged: purged}
	c.JSON(http.StatusOK, response)
}

// Package http provides HTTP handlers for activation code operations.
// Redemption is machine-bound: the use case resolves the machine fingerprint
// itself, so no handler accepts a machine ID from the outside.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	"github.com/savegatehq/savegate/internal/activation/http/dto"
	activationUseCase "github.com/savegatehq/savegate/internal/activation/usecase"
	"github.com/savegatehq/savegate/internal/httputil"
	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// ActivationHandler handles HTTP requests for activation code generation,
// validation, and redemption.
type ActivationHandler struct {
	activationUseCase activationUseCase.ActivationUseCase
	logger            *slog.Logger
}

// NewActivationHandler creates a new activation handler with required dependencies.
func NewActivationHandler(
	activationUseCase activationUseCase.ActivationUseCase,
	logger *slog.Logger,
) *ActivationHandler {
	return &ActivationHandler{
		activationUseCase: activationUseCase,
		logger:            logger,
	}
}

// GenerateHandler mints a fresh activation code for a named bundle.
// POST /v1/activation/generate - Requires an admin token.
// Returns 201 Created with the code in display form.
func (h *ActivationHandler) GenerateHandler(c *gin.Context) {
	var req dto.GenerateCodeRequest

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

	bundle, err := activationDomain.ParseBundleName(req.Bundle)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	code, err := h.activationUseCase.GenerateCode(c.Request.Context(), bundle)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapActivationCodeToResponse(code)
	c.JSON(http.StatusCreated, response)
}

// ValidateHandler inspects a code without redeeming it.
// POST /v1/activation/validate
// Returns 200 OK with the bundle, its actions, and whether this machine has
// already redeemed the code. Tampered codes map to 401, malformed ones to 422.
func (h *ActivationHandler) ValidateHandler(c *gin.Context) {
	var req dto.ValidateCodeRequest

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

	code, err := h.activationUseCase.ValidateCode(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	redeemed, err := h.activationUseCase.IsRedeemed(c.Request.Context(), req.Code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapValidateCodeToResponse(code, redeemed)
	c.JSON(http.StatusOK, response)
}

// RedeemHandler redeems a code on this machine, granting the bundle's
// capabilities for the given game scope.
// POST /v1/activation/redeem
// Returns 200 OK with the granted action names. A code already redeemed on
// this machine maps to 409.
func (h *ActivationHandler) RedeemHandler(c *gin.Context) {
	var req dto.RedeemCodeRequest

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

	granted, err := h.activationUseCase.Redeem(c.Request.Context(), req.Code, req.GameScope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.RedeemCodeResponse{GrantedActions: granted}
	c.JSON(http.StatusOK, response)
}

// Package http provides HTTP handlers for admin token operations.
//
// Two of the handlers are reachable without an admin token: creating a
// token with the debug password and the break-glass pair. Both gate on
// their own secret and are the bootstrap into the admin surface; the
// router additionally rate-limits them harder than normal routes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/savegatehq/savegate/internal/admintoken/http/dto"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
	"github.com/savegatehq/savegate/internal/httputil"
	customValidation "github.com/savegatehq/savegate/internal/validation"
)

// AdminHandler handles HTTP requests for admin token bootstrap, break-glass
// recovery, and diagnostics.
type AdminHandler struct {
	adminTokenUseCase adminUseCase.AdminTokenUseCase
	logger            *slog.Logger
}

// NewAdminHandler creates a new admin handler with required dependencies.
func NewAdminHandler(
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminTokenUseCase: adminTokenUseCase,
		logger:            logger,
	}
}

// CreateTokenHandler bootstraps an admin token from the debug password.
// POST /v1/admin/tokens
// Returns 201 Created with the token; the token is also persisted as this
// machine's token file. 403 when debug activation is not configured, 401 on
// a wrong password.
func (h *AdminHandler) CreateTokenHandler(c *gin.Context) {
	var req dto.CreateTokenRequest

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

	token, err := h.adminTokenUseCase.ActivateDebug(c.Request.Context(), req.Password, req.Scope)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAdminTokenToResponse(token)
	c.JSON(http.StatusCreated, response)
}

// DiagnosticsHandler returns the support snapshot.
// GET /v1/admin/diagnostics - Requires an admin token.
// Returns 200 OK; a down store is reported inside the body, not as a 5xx.
func (h *AdminHandler) DiagnosticsHandler(c *gin.Context) {
	diagnostics, err := h.adminTokenUseCase.GetDiagnostics(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapDiagnosticsToResponse(diagnostics)
	c.JSON(http.StatusOK, response)
}

// BreakGlassChallengeHandler returns today's break-glass challenge for this
// machine.
// POST /v1/admin/break-glass/challenge
// Returns 200 OK. Deterministic within a UTC day, so retries show the user
// the same challenge to read to support.
func (h *AdminHandler) BreakGlassChallengeHandler(c *gin.Context) {
	challenge, err := h.adminTokenUseCase.GenerateBreakGlassChallenge(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.BreakGlassChallengeResponse{Challenge: challenge})
}

// BreakGlassRespondHandler verifies a break-glass response and issues a
// short-lived admin token.
// POST /v1/admin/break-glass/respond
// Returns 201 Created with the token on success. Every rejection is the
// same 401 regardless of which part of the exchange was wrong.
func (h *AdminHandler) BreakGlassRespondHandler(c *gin.Context) {
	var req dto.BreakGlassRespondRequest

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

	token, err := h.adminTokenUseCase.ValidateBreakGlassResponse(
		c.Request.Context(), req.Challenge, req.Response, req.Scope,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.MapAdminTokenToResponse(token)
	c.JSON(http.StatusCreated, response)
}

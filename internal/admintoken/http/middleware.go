package http

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	"github.com/savegatehq/savegate/internal/admintoken/http/dto"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/httputil"
)

// AdminGuardMiddleware protects admin routes with a validated admin token.
//
// The middleware resolves the token two ways:
//  1. An Authorization header of the form "Bearer <base64(token JSON)>",
//     where the payload is the token file content (the same shape the token
//     endpoints return). Used by support tooling and the CLI.
//  2. No Authorization header: the configured token file is loaded and
//     validated. The desktop front end on the same machine never has to
//     manage a credential by hand; the token file is the session.
//
// On success the token is stored in the request context for handlers that
// enforce scope coverage against request bodies (see GetAdminToken).
//
// Error handling:
//   - Malformed header or credential → 401 Unauthorized
//   - Invalid signature or expired token → 401 Unauthorized
//   - No token file on this machine → 401 Unauthorized
func AdminGuardMiddleware(
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFromRequest(c, adminTokenUseCase)
		if err != nil {
			// A missing token file is an absent admin session, not a
			// missing resource; it must read as 401 on this surface.
			if apperrors.Is(err, adminDomain.ErrTokenNotFound) {
				err = apperrors.Wrap(apperrors.ErrUnauthorized, "admin token required")
			}

			logger.Debug("admin guard rejected request",
				slog.String("path", c.Request.URL.Path),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store validated token in context
		ctx := WithAdminToken(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("admin guard accepted request",
			slog.String("token_id", token.ID),
			slog.String("token_scope", token.Scope),
			slog.String("token_method", string(token.Method)))

		c.Next()
	}
}

// tokenFromRequest resolves and validates the admin token for a request.
func tokenFromRequest(
	c *gin.Context,
	adminTokenUseCase adminUseCase.AdminTokenUseCase,
) (*adminDomain.AdminToken, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// Implicit local session via the configured token file.
		return adminTokenUseCase.LoadAndValidateToken(c.Request.Context())
	}

	// Parse Bearer credential (case-insensitive prefix)
	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return nil, adminDomain.ErrMalformedToken
	}

	credential := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if credential == "" {
		return nil, adminDomain.ErrMalformedToken
	}

	payload, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		return nil, adminDomain.ErrMalformedToken
	}

	var response dto.AdminTokenResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, adminDomain.ErrMalformedToken
	}

	token, err := response.ToDomain()
	if err != nil {
		return nil, err
	}

	if err := adminTokenUseCase.ValidateToken(c.Request.Context(), token); err != nil {
		return nil, err
	}

	return token, nil
}

// AdminScopeMiddleware requires the validated admin token to cover a fixed
// game scope. Routes whose effect is store-wide rather than per-game (for
// example minting activation codes) register it with the wildcard scope so
// that narrowly scoped break-glass tokens cannot reach them.
//
// MUST be used after AdminGuardMiddleware.
func AdminScopeMiddleware(scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := GetAdminToken(c.Request.Context())
		if !ok || token == nil {
			logger.Error("scope middleware: no admin token in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !token.CoversScope(scope) {
			logger.Debug("admin token scope rejected",
				slog.String("token_scope", token.Scope),
				slog.String("required_scope", scope))
			httputil.HandleErrorGin(c, adminDomain.ErrScopeNotCovered, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

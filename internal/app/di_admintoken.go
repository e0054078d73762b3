package app

import (
	"fmt"

	adminHTTP "github.com/savegatehq/savegate/internal/admintoken/http"
	adminRepository "github.com/savegatehq/savegate/internal/admintoken/repository"
	adminService "github.com/savegatehq/savegate/internal/admintoken/service"
	adminUseCase "github.com/savegatehq/savegate/internal/admintoken/usecase"
)

// TokenService returns the admin token signing service.
func (c *Container) TokenService() (adminService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// BreakGlassService returns the break-glass challenge/response engine.
func (c *Container) BreakGlassService() (adminService.BreakGlassService, error) {
	var err error
	c.breakGlassServiceInit.Do(func() {
		c.breakGlassService, err = c.initBreakGlassService()
		if err != nil {
			c.initErrors["breakGlassService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["breakGlassService"]; exists {
		return nil, storedErr
	}
	return c.breakGlassService, nil
}

// AdminTokenRepository returns the file-backed admin token repository.
func (c *Container) AdminTokenRepository() adminUseCase.TokenRepository {
	c.adminTokenRepoInit.Do(func() {
		c.adminTokenRepo = c.initAdminTokenRepository()
	})
	return c.adminTokenRepo
}

// AdminTokenUseCase returns the admin token use case.
func (c *Container) AdminTokenUseCase() (adminUseCase.AdminTokenUseCase, error) {
	var err error
	c.adminTokenUseCaseInit.Do(func() {
		c.adminTokenUseCase, err = c.initAdminTokenUseCase()
		if err != nil {
			c.initErrors["adminTokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminTokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.adminTokenUseCase, nil
}

// AdminHandler returns the HTTP handler for admin operations.
func (c *Container) AdminHandler() (*adminHTTP.AdminHandler, error) {
	var err error
	c.adminHandlerInit.Do(func() {
		c.adminHandler, err = c.initAdminHandler()
		if err != nil {
			c.initErrors["adminHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminHandler"]; exists {
		return nil, storedErr
	}
	return c.adminHandler, nil
}

// initTokenService creates the admin token service with the derived signing key.
func (c *Container) initTokenService() (adminService.TokenService, error) {
	keyRing, err := c.KeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get key ring for token service: %w", err)
	}

	tokenService, err := adminService.NewTokenService(keyRing.AdminTokenKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return tokenService, nil
}

// initBreakGlassService creates the break-glass service from the configured
// verifier. An empty verifier yields a disabled service, not an error.
func (c *Container) initBreakGlassService() (adminService.BreakGlassService, error) {
	verifier, err := adminService.ParseVerifier(c.config.BreakGlassVerifier)
	if err != nil {
		return nil, fmt.Errorf("failed to parse break-glass verifier: %w", err)
	}

	breakGlassService, err := adminService.NewBreakGlassService(verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create break-glass service: %w", err)
	}
	return breakGlassService, nil
}

// initAdminTokenRepository creates the file token repository at the configured path.
func (c *Container) initAdminTokenRepository() adminUseCase.TokenRepository {
	return adminRepository.NewFileTokenRepository(c.config.AdminTokenFile)
}

// initAdminTokenUseCase creates the admin token use case with all its dependencies.
// Diagnostics reads counts straight from the entitlement repositories and
// pings the store through the shared connection.
func (c *Container) initAdminTokenUseCase() (adminUseCase.AdminTokenUseCase, error) {
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for admin token use case: %w", err)
	}

	breakGlassService, err := c.BreakGlassService()
	if err != nil {
		return nil, fmt.Errorf("failed to get break-glass service for admin token use case: %w", err)
	}

	capabilityRepo, err := c.CapabilityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability repository for admin token use case: %w", err)
	}

	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for admin token use case: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for admin token use case: %w", err)
	}

	baseUseCase, err := adminUseCase.NewAdminTokenUseCase(
		c.config,
		tokenService,
		breakGlassService,
		c.AdminTokenRepository(),
		capabilityRepo,
		auditRepo,
		db,
		c.MachineIDProvider(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token use case: %w", err)
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for admin token use case: %w", err)
		}
		return adminUseCase.NewAdminTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAdminHandler creates the admin HTTP handler with all its dependencies.
func (c *Container) initAdminHandler() (*adminHTTP.AdminHandler, error) {
	adminTokenUseCase, err := c.AdminTokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin token use case for admin handler: %w", err)
	}

	logger := c.Logger()

	return adminHTTP.NewAdminHandler(adminTokenUseCase, logger), nil
}

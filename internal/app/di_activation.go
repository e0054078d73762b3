package app

import (
	"fmt"

	activationHTTP "github.com/savegatehq/savegate/internal/activation/http"
	activationRepository "github.com/savegatehq/savegate/internal/activation/repository"
	activationService "github.com/savegatehq/savegate/internal/activation/service"
	activationUseCase "github.com/savegatehq/savegate/internal/activation/usecase"
)

// RedemptionRepository returns the code redemption repository based on database driver.
func (c *Container) RedemptionRepository() (activationUseCase.RedemptionRepository, error) {
	var err error
	c.redemptionRepoInit.Do(func() {
		c.redemptionRepo, err = c.initRedemptionRepository()
		if err != nil {
			c.initErrors["redemptionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["redemptionRepo"]; exists {
		return nil, storedErr
	}
	return c.redemptionRepo, nil
}

// CodeService returns the activation code service.
func (c *Container) CodeService() (activationService.CodeService, error) {
	var err error
	c.codeServiceInit.Do(func() {
		c.codeService, err = c.initCodeService()
		if err != nil {
			c.initErrors["codeService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["codeService"]; exists {
		return nil, storedErr
	}
	return c.codeService, nil
}

// ActivationUseCase returns the activation use case.
func (c *Container) ActivationUseCase() (activationUseCase.ActivationUseCase, error) {
	var err error
	c.activationUseCaseInit.Do(func() {
		c.activationUseCase, err = c.initActivationUseCase()
		if err != nil {
			c.initErrors["activationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["activationUseCase"]; exists {
		return nil, storedErr
	}
	return c.activationUseCase, nil
}

// ActivationHandler returns the HTTP handler for activation code operations.
func (c *Container) ActivationHandler() (*activationHTTP.ActivationHandler, error) {
	var err error
	c.activationHandlerInit.Do(func() {
		c.activationHandler, err = c.initActivationHandler()
		if err != nil {
			c.initErrors["activationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["activationHandler"]; exists {
		return nil, storedErr
	}
	return c.activationHandler, nil
}

// initRedemptionRepository creates the redemption repository based on the database driver.
func (c *Container) initRedemptionRepository() (activationUseCase.RedemptionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for redemption repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return activationRepository.NewPostgreSQLRedemptionRepository(db), nil
	case "mysql":
		return activationRepository.NewMySQLRedemptionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCodeService creates the activation code service with the derived signing key.
func (c *Container) initCodeService() (activationService.CodeService, error) {
	keyRing, err := c.KeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get key ring for code service: %w", err)
	}

	codeService, err := activationService.NewCodeService(keyRing.ActivationCodeKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create code service: %w", err)
	}
	return codeService, nil
}

// initActivationUseCase creates the activation use case with all its dependencies.
// Redemption grants capabilities through the entitlement use case so every
// grant is signed, persisted and audited exactly like a manual one.
func (c *Container) initActivationUseCase() (activationUseCase.ActivationUseCase, error) {
	codeService, err := c.CodeService()
	if err != nil {
		return nil, fmt.Errorf("failed to get code service for activation use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction manager for activation use case: %w", err)
	}

	redemptionRepo, err := c.RedemptionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption repository for activation use case: %w", err)
	}

	entitlementUseCase, err := c.EntitlementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement use case for activation use case: %w", err)
	}

	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for activation use case: %w", err)
	}

	baseUseCase := activationUseCase.NewActivationUseCase(
		c.config,
		codeService,
		txManager,
		redemptionRepo,
		entitlementUseCase,
		auditRepo,
		c.MachineIDProvider(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for activation use case: %w", err)
		}
		return activationUseCase.NewActivationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initActivationHandler creates the activation HTTP handler with all its dependencies.
func (c *Container) initActivationHandler() (*activationHTTP.ActivationHandler, error) {
	activationUseCase, err := c.ActivationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get activation use case for activation handler: %w", err)
	}

	logger := c.Logger()

	return activationHTTP.NewActivationHandler(activationUseCase, logger), nil
}

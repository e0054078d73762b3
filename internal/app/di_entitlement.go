package app

import (
	"fmt"

	entitlementHTTP "github.com/savegatehq/savegate/internal/entitlement/http"
	entitlementRepository "github.com/savegatehq/savegate/internal/entitlement/repository"
	entitlementService "github.com/savegatehq/savegate/internal/entitlement/service"
	entitlementUseCase "github.com/savegatehq/savegate/internal/entitlement/usecase"
)

// CapabilityRepository returns the capability repository based on database driver.
func (c *Container) CapabilityRepository() (entitlementUseCase.CapabilityRepository, error) {
	var err error
	c.capabilityRepoInit.Do(func() {
		c.capabilityRepo, err = c.initCapabilityRepository()
		if err != nil {
			c.initErrors["capabilityRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityRepo"]; exists {
		return nil, storedErr
	}
	return c.capabilityRepo, nil
}

// AuditRepository returns the audit entry repository based on database driver.
func (c *Container) AuditRepository() (entitlementUseCase.AuditRepository, error) {
	var err error
	c.auditRepoInit.Do(func() {
		c.auditRepo, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// ConsentRepository returns the consent record repository based on database driver.
func (c *Container) ConsentRepository() (entitlementUseCase.ConsentRepository, error) {
	var err error
	c.consentRepoInit.Do(func() {
		c.consentRepo, err = c.initConsentRepository()
		if err != nil {
			c.initErrors["consentRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consentRepo"]; exists {
		return nil, storedErr
	}
	return c.consentRepo, nil
}

// CapabilityValidator returns the HMAC validator for capabilities.
func (c *Container) CapabilityValidator() (entitlementService.CapabilityValidator, error) {
	var err error
	c.capabilityValidatorInit.Do(func() {
		c.capabilityValidator, err = c.initCapabilityValidator()
		if err != nil {
			c.initErrors["capabilityValidator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityValidator"]; exists {
		return nil, storedErr
	}
	return c.capabilityValidator, nil
}

// CapabilityIssuer returns the issuer that mints signed capabilities.
func (c *Container) CapabilityIssuer() (entitlementService.CapabilityIssuer, error) {
	var err error
	c.capabilityIssuerInit.Do(func() {
		c.capabilityIssuer, err = c.initCapabilityIssuer()
		if err != nil {
			c.initErrors["capabilityIssuer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityIssuer"]; exists {
		return nil, storedErr
	}
	return c.capabilityIssuer, nil
}

// EntitlementUseCase returns the entitlement use case.
func (c *Container) EntitlementUseCase() (entitlementUseCase.EntitlementUseCase, error) {
	var err error
	c.entitlementUseCaseInit.Do(func() {
		c.entitlementUseCase, err = c.initEntitlementUseCase()
		if err != nil {
			c.initErrors["entitlementUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entitlementUseCase"]; exists {
		return nil, storedErr
	}
	return c.entitlementUseCase, nil
}

// EntitlementHandler returns the HTTP handler for entitlement operations.
func (c *Container) EntitlementHandler() (*entitlementHTTP.EntitlementHandler, error) {
	var err error
	c.entitlementHandlerInit.Do(func() {
		c.entitlementHandler, err = c.initEntitlementHandler()
		if err != nil {
			c.initErrors["entitlementHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entitlementHandler"]; exists {
		return nil, storedErr
	}
	return c.entitlementHandler, nil
}

// AuditHandler returns the HTTP handler for audit trail operations.
func (c *Container) AuditHandler() (*entitlementHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		c.auditHandler, err = c.initAuditHandler()
		if err != nil {
			c.initErrors["auditHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// ConsentHandler returns the HTTP handler for consent operations.
func (c *Container) ConsentHandler() (*entitlementHTTP.ConsentHandler, error) {
	var err error
	c.consentHandlerInit.Do(func() {
		c.consentHandler, err = c.initConsentHandler()
		if err != nil {
			c.initErrors["consentHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consentHandler"]; exists {
		return nil, storedErr
	}
	return c.consentHandler, nil
}

// initCapabilityRepository creates the capability repository based on the database driver.
func (c *Container) initCapabilityRepository() (entitlementUseCase.CapabilityRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for capability repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return entitlementRepository.NewPostgreSQLCapabilityRepository(db), nil
	case "mysql":
		return entitlementRepository.NewMySQLCapabilityRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditRepository creates the audit entry repository based on the database driver.
func (c *Container) initAuditRepository() (entitlementUseCase.AuditRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return entitlementRepository.NewPostgreSQLAuditEntryRepository(db), nil
	case "mysql":
		return entitlementRepository.NewMySQLAuditEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initConsentRepository creates the consent record repository based on the database driver.
func (c *Container) initConsentRepository() (entitlementUseCase.ConsentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for consent repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return entitlementRepository.NewPostgreSQLConsentRepository(db), nil
	case "mysql":
		return entitlementRepository.NewMySQLConsentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCapabilityValidator creates the capability validator with the derived signing key.
func (c *Container) initCapabilityValidator() (entitlementService.CapabilityValidator, error) {
	keyRing, err := c.KeyRing()
	if err != nil {
		return nil, fmt.Errorf("failed to get key ring for capability validator: %w", err)
	}

	validator, err := entitlementService.NewCapabilityValidator(keyRing.CapabilityKey())
	if err != nil {
		return nil, fmt.Errorf("failed to create capability validator: %w", err)
	}
	return validator, nil
}

// initCapabilityIssuer creates the capability issuer on top of the validator.
func (c *Container) initCapabilityIssuer() (entitlementService.CapabilityIssuer, error) {
	validator, err := c.CapabilityValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability validator for capability issuer: %w", err)
	}
	return entitlementService.NewCapabilityIssuer(validator), nil
}

// initEntitlementUseCase creates the entitlement use case with all its dependencies.
func (c *Container) initEntitlementUseCase() (entitlementUseCase.EntitlementUseCase, error) {
	capabilityRepo, err := c.CapabilityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability repository for entitlement use case: %w", err)
	}

	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for entitlement use case: %w", err)
	}

	consentRepo, err := c.ConsentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get consent repository for entitlement use case: %w", err)
	}

	validator, err := c.CapabilityValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability validator for entitlement use case: %w", err)
	}

	issuer, err := c.CapabilityIssuer()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability issuer for entitlement use case: %w", err)
	}

	baseUseCase := entitlementUseCase.NewEntitlementUseCase(
		c.config,
		capabilityRepo,
		auditRepo,
		consentRepo,
		validator,
		issuer,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for entitlement use case: %w", err)
		}
		return entitlementUseCase.NewEntitlementUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initEntitlementHandler creates the entitlement HTTP handler with all its dependencies.
func (c *Container) initEntitlementHandler() (*entitlementHTTP.EntitlementHandler, error) {
	entitlementUseCase, err := c.EntitlementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement use case for entitlement handler: %w", err)
	}

	logger := c.Logger()

	return entitlementHTTP.NewEntitlementHandler(entitlementUseCase, logger), nil
}

// initAuditHandler creates the audit HTTP handler with all its dependencies.
func (c *Container) initAuditHandler() (*entitlementHTTP.AuditHandler, error) {
	entitlementUseCase, err := c.EntitlementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement use case for audit handler: %w", err)
	}

	logger := c.Logger()

	return entitlementHTTP.NewAuditHandler(entitlementUseCase, logger), nil
}

// initConsentHandler creates the consent HTTP handler with all its dependencies.
func (c *Container) initConsentHandler() (*entitlementHTTP.ConsentHandler, error) {
	entitlementUseCase, err := c.EntitlementUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement use case for consent handler: %w", err)
	}

	logger := c.Logger()

	return entitlementHTTP.NewConsentHandler(entitlementUseCase, logger), nil
}

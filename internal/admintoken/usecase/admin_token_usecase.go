package usecase

import (
	"context"
	"crypto/hmac"
	"log/slog"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	adminDomain "github.com/savegatehq/savegate/internal/admintoken/domain"
	adminService "github.com/savegatehq/savegate/internal/admintoken/service"
	"github.com/savegatehq/savegate/internal/config"
	entitlementDomain "github.com/savegatehq/savegate/internal/entitlement/domain"
	apperrors "github.com/savegatehq/savegate/internal/errors"
	"github.com/savegatehq/savegate/internal/machineid"
)

// auditActionBreakGlass names break-glass attempts in the audit trail.
const auditActionBreakGlass = "admin.break_glass"

// adminTokenUseCase implements AdminTokenUseCase.
type adminTokenUseCase struct {
	config        *config.Config
	tokenService  adminService.TokenService
	breakGlass    adminService.BreakGlassService
	tokenRepo     TokenRepository
	capabilities  CapabilityCounter
	auditTrail    AuditTrail
	pinger        StorePinger
	machine       machineid.Provider
	debugPassword *pwdhash.PasswordHasher
}

// GenerateToken mints a signed token without persisting it.
func (a *adminTokenUseCase) GenerateToken(
	ctx context.Context,
	scope string,
	lifetime time.Duration,
	method adminDomain.Method,
) (*adminDomain.AdminToken, error) {
	return a.tokenService.Issue(scope, lifetime, method)
}

// ValidateToken checks a token's signature, expiry, and method.
func (a *adminTokenUseCase) ValidateToken(ctx context.Context, token *adminDomain.AdminToken) error {
	return a.tokenService.Validate(token)
}

// SaveToken persists the token after validating it; an expired or forged
// token never reaches the file.
func (a *adminTokenUseCase) SaveToken(ctx context.Context, token *adminDomain.AdminToken) error {
	if err := a.tokenService.Validate(token); err != nil {
		return err
	}
	return a.tokenRepo.Save(ctx, token)
}

// LoadAndValidateToken reads the persisted token and validates it.
func (a *adminTokenUseCase) LoadAndValidateToken(ctx context.Context) (*adminDomain.AdminToken, error) {
	token, err := a.tokenRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.tokenService.Validate(token); err != nil {
		return nil, err
	}

	return token, nil
}

// RevokeToken deletes the persisted token.
func (a *adminTokenUseCase) RevokeToken(ctx context.Context) error {
	return a.tokenRepo.Delete(ctx)
}

// ActivateDebug verifies the debug password and persists a short-lived
// debug-env token. Hash verification failure and password mismatch report
// the same error; the caller learns nothing about the stored hash.
func (a *adminTokenUseCase) ActivateDebug(
	ctx context.Context,
	password, scope string,
) (*adminDomain.AdminToken, error) {
	if a.config.AdminDebugPasswordHash == "" {
		return nil, adminDomain.ErrDebugActivationDisabled
	}

	ok, err := a.debugPassword.Verify([]byte(password), a.config.AdminDebugPasswordHash)
	if err != nil || !ok {
		return nil, adminDomain.ErrInvalidDebugPassword
	}

	token, err := a.tokenService.Issue(scope, a.config.AdminTokenExpiration, adminDomain.MethodDebugEnv)
	if err != nil {
		return nil, err
	}
	if err := a.tokenRepo.Save(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// GenerateBreakGlassChallenge returns today's challenge for this machine.
func (a *adminTokenUseCase) GenerateBreakGlassChallenge(ctx context.Context) (string, error) {
	return a.breakGlass.Challenge(a.machine.MachineID(), time.Now().UTC()), nil
}

// ValidateBreakGlassResponse checks a challenge/response pair and issues a
// break-glass token on success. The response is verified against today's
// recomputed challenge, not the submitted one, and both the challenge match
// and the response check always run before the single branch, so the denial
// reveals nothing about which part was wrong.
func (a *adminTokenUseCase) ValidateBreakGlassResponse(
	ctx context.Context,
	challenge, response, scope string,
) (*adminDomain.AdminToken, error) {
	todays := a.breakGlass.Challenge(a.machine.MachineID(), time.Now().UTC())

	challengeMatch := hmac.Equal(
		[]byte(adminService.NormalizeInput(challenge)),
		[]byte(adminService.NormalizeInput(todays)),
	)
	responseMatch := a.breakGlass.VerifyResponse(todays, response)

	if !challengeMatch || !responseMatch {
		a.appendAudit(ctx, scope, entitlementDomain.OutcomeDenied, "break-glass response rejected")
		return nil, adminDomain.ErrBreakGlassRejected
	}

	token, err := a.tokenService.Issue(scope, a.config.BreakGlassTokenExpiration, adminDomain.MethodBreakGlass)
	if err != nil {
		return nil, err
	}
	if err := a.tokenRepo.Save(ctx, token); err != nil {
		return nil, err
	}

	a.appendAudit(ctx, scope, entitlementDomain.OutcomeSuccess, "break-glass token issued")
	return token, nil
}

// GetDiagnostics assembles the support snapshot. Each probe fails
// independently: a down store still yields a snapshot that says so.
func (a *adminTokenUseCase) GetDiagnostics(ctx context.Context) (*adminDomain.Diagnostics, error) {
	diagnostics := &adminDomain.Diagnostics{StoreHealthy: true}

	if token, err := a.tokenRepo.Load(ctx); err == nil {
		diagnostics.TokenPresent = true
		diagnostics.TokenScope = token.Scope
		expiresAt := token.ExpiresAt
		diagnostics.TokenExpiresAt = &expiresAt
		diagnostics.TokenValid = a.tokenService.Validate(token) == nil
	}

	if err := a.pinger.PingContext(ctx); err != nil {
		diagnostics.StoreHealthy = false
	}

	if count, err := a.capabilities.CountActive(ctx); err != nil {
		diagnostics.StoreHealthy = false
	} else {
		diagnostics.ActiveCapabilities = count
	}

	if count, err := a.auditTrail.Count(ctx); err != nil {
		diagnostics.StoreHealthy = false
	} else {
		diagnostics.AuditEntries = count
	}

	return diagnostics, nil
}

// appendAudit writes one break-glass audit entry, best effort. A cancelled
// context suppresses the write; any other failure is logged and swallowed
// because the audit trail must never change an admin operation's result.
func (a *adminTokenUseCase) appendAudit(
	ctx context.Context,
	gameScope string,
	outcome entitlementDomain.Outcome,
	detail string,
) {
	if ctx.Err() != nil {
		return
	}

	entry := &entitlementDomain.AuditEntry{
		ID:        uuid.Must(uuid.NewV7()),
		Timestamp: time.Now().UTC(),
		Action:    auditActionBreakGlass,
		GameScope: gameScope,
		Outcome:   outcome,
		Detail:    detail,
	}

	if err := a.auditTrail.Append(ctx, entry); err != nil {
		slog.Warn("failed to append audit entry",
			slog.String("action", auditActionBreakGlass),
			slog.String("game_scope", gameScope),
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}

// NewAdminTokenUseCase creates an AdminTokenUseCase with the provided dependencies.
func NewAdminTokenUseCase(
	cfg *config.Config,
	tokenService adminService.TokenService,
	breakGlass adminService.BreakGlassService,
	tokenRepo TokenRepository,
	capabilities CapabilityCounter,
	auditTrail AuditTrail,
	pinger StorePinger,
	machine machineid.Provider,
) (AdminTokenUseCase, error) {
	// Initialize password hasher with interactive policy for the debug password
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &adminTokenUseCase{
		config:        cfg,
		tokenService:  tokenService,
		breakGlass:    breakGlass,
		tokenRepo:     tokenRepo,
		capabilities:  capabilities,
		auditTrail:    auditTrail,
		pinger:        pinger,
		machine:       machine,
		debugPassword: hasher,
	}, nil
}

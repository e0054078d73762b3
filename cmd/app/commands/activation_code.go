package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	activationDomain "github.com/savegatehq/savegate/internal/activation/domain"
	activationUseCase "github.com/savegatehq/savegate/internal/activation/usecase"
)

// RunGenerateCode mints a signed activation code for a bundle. This is the
// vendor-side half of activation; the generated code can be redeemed on any
// machine holding the same signing master key.
func RunGenerateCode(
	ctx context.Context,
	activationUseCase activationUseCase.ActivationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	bundleName string,
	format string,
) error {
	bundle, err := activationDomain.ParseBundleName(bundleName)
	if err != nil {
		return fmt.Errorf("invalid bundle %q (valid options: pro, trial, supporter): %w", bundleName, err)
	}

	logger.Info("generating activation code", slog.String("bundle", bundle.String()))

	code, err := activationUseCase.GenerateCode(ctx, bundle)
	if err != nil {
		return fmt.Errorf("failed to generate activation code: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"code":   code.Code,
			"bundle": code.Bundle.String(),
		})
	}

	_, _ = fmt.Fprintf(writer, "Activation code for the %s bundle:\n\n", code.Bundle)
	_, _ = fmt.Fprintf(writer, "  %s\n", code.Code)
	return nil
}

// RunValidateCode checks a code's authenticity without consuming it, and
// reports whether this machine has already redeemed it. An invalid code is
// printed and also returned as an error so the exit code reflects it.
func RunValidateCode(
	ctx context.Context,
	activationUseCase activationUseCase.ActivationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	code string,
	format string,
) error {
	logger.Info("validating activation code")

	parsed, err := activationUseCase.ValidateCode(ctx, code)
	if err != nil {
		if format == "json" {
			_ = outputJSON(writer, map[string]interface{}{
				"valid":  false,
				"reason": err.Error(),
			})
		} else {
			_, _ = fmt.Fprintf(writer, "Invalid code: %v\n", err)
		}
		return fmt.Errorf("invalid activation code: %w", err)
	}

	redeemed, err := activationUseCase.IsRedeemed(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check redemption state: %w", err)
	}

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"valid":    true,
			"bundle":   parsed.Bundle.String(),
			"redeemed": redeemed,
		})
	}

	_, _ = fmt.Fprintf(writer, "Valid code for the %s bundle\n", parsed.Bundle)
	if redeemed {
		_, _ = fmt.Fprintf(writer, "Already redeemed on this machine\n")
	} else {
		_, _ = fmt.Fprintf(writer, "Not yet redeemed on this machine\n")
	}
	return nil
}

// RunRedeemCode redeems an activation code for a game scope on this machine,
// granting one capability per bundle action.
func RunRedeemCode(
	ctx context.Context,
	activationUseCase activationUseCase.ActivationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	code, gameScope string,
	format string,
) error {
	if gameScope == "" {
		return fmt.Errorf("scope must not be empty")
	}

	logger.Info("redeeming activation code", slog.String("game_scope", gameScope))

	granted, err := activationUseCase.Redeem(ctx, code, gameScope)
	if err != nil {
		return fmt.Errorf("failed to redeem activation code: %w", err)
	}

	logger.Info("activation code redeemed",
		slog.String("game_scope", gameScope),
		slog.Int("granted", len(granted)),
	)

	if format == "json" {
		return outputJSON(writer, map[string]interface{}{
			"game_scope": gameScope,
			"granted":    granted,
		})
	}

	_, _ = fmt.Fprintf(writer, "Code redeemed for game scope %s\n", gameScope)
	_, _ = fmt.Fprintf(writer, "Granted actions:\n")
	for _, action := range granted {
		_, _ = fmt.Fprintf(writer, "  - %s\n", action)
	}
	return nil
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/savegatehq/savegate/cmd/app/commands"
	"github.com/savegatehq/savegate/internal/app"
	"github.com/savegatehq/savegate/internal/config"
)

func getAdminCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "admin",
			Usage: "Administrative token operations",
			Commands: []*cli.Command{
				{
					Name:  "token",
					Usage: "Manage this machine's admin token",
					Commands: []*cli.Command{
						{
							Name:  "issue",
							Usage: "Mint and persist an admin token for this machine",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:    "scope",
									Aliases: []string{"s"},
									Value:   "*",
									Usage:   "Game scope the token covers, or '*' for all games",
								},
								&cli.DurationFlag{
									Name:    "lifetime",
									Aliases: []string{"l"},
									Value:   0,
									Usage:   "Token lifetime (e.g. 12h); omit for the configured default",
								},
								&cli.StringFlag{
									Name:    "format",
									Aliases: []string{"f"},
									Value:   "text",
									Usage:   "Output format: 'text' or 'json'",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								cfg := config.Load()
								container := app.NewContainer(cfg)
								defer func() { _ = container.Shutdown(ctx) }()

								adminTokenUseCase, err := container.AdminTokenUseCase()
								if err != nil {
									return err
								}

								lifetime := cmd.Duration("lifetime")
								if lifetime == 0 {
									lifetime = cfg.AdminTokenExpiration
								}

								return commands.RunIssueAdminToken(
									ctx,
									adminTokenUseCase,
									container.Logger(),
									commands.DefaultIO().Writer,
									cmd.String("scope"),
									lifetime,
									cfg.AdminTokenFile,
									cmd.String("format"),
								)
							},
						},
						{
							Name:  "validate",
							Usage: "Validate this machine's persisted admin token",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:    "format",
									Aliases: []string{"f"},
									Value:   "text",
									Usage:   "Output format: 'text' or 'json'",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								cfg := config.Load()
								container := app.NewContainer(cfg)
								defer func() { _ = container.Shutdown(ctx) }()

								adminTokenUseCase, err := container.AdminTokenUseCase()
								if err != nil {
									return err
								}

								return commands.RunValidateAdminToken(
									ctx,
									adminTokenUseCase,
									container.Logger(),
									commands.DefaultIO().Writer,
									cmd.String("format"),
								)
							},
						},
						{
							Name:  "revoke",
							Usage: "Delete this machine's persisted admin token",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:    "format",
									Aliases: []string{"f"},
									Value:   "text",
									Usage:   "Output format: 'text' or 'json'",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								cfg := config.Load()
								container := app.NewContainer(cfg)
								defer func() { _ = container.Shutdown(ctx) }()

								adminTokenUseCase, err := container.AdminTokenUseCase()
								if err != nil {
									return err
								}

								return commands.RunRevokeAdminToken(
									ctx,
									adminTokenUseCase,
									container.Logger(),
									commands.DefaultIO().Writer,
									cmd.String("format"),
								)
							},
						},
					},
				},
				{
					Name:  "breakglass",
					Usage: "Offline challenge/response recovery",
					Commands: []*cli.Command{
						{
							Name:  "challenge",
							Usage: "Print today's break-glass challenge for this machine",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:    "format",
									Aliases: []string{"f"},
									Value:   "text",
									Usage:   "Output format: 'text' or 'json'",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								cfg := config.Load()
								container := app.NewContainer(cfg)
								defer func() { _ = container.Shutdown(ctx) }()

								adminTokenUseCase, err := container.AdminTokenUseCase()
								if err != nil {
									return err
								}

								return commands.RunBreakGlassChallenge(
									ctx,
									adminTokenUseCase,
									container.Logger(),
									commands.DefaultIO().Writer,
									cmd.String("format"),
								)
							},
						},
						{
							Name:  "respond",
							Usage: "Submit a support-provided response for today's challenge",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:     "challenge",
									Aliases:  []string{"c"},
									Required: true,
									Usage:    "The challenge read to support",
								},
								&cli.StringFlag{
									Name:     "response",
									Aliases:  []string{"r"},
									Required: true,
									Usage:    "The response support read back",
								},
								&cli.StringFlag{
									Name:    "scope",
									Aliases: []string{"s"},
									Value:   "*",
									Usage:   "Game scope the issued token covers",
								},
								&cli.StringFlag{
									Name:    "format",
									Aliases: []string{"f"},
									Value:   "text",
									Usage:   "Output format: 'text' or 'json'",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								cfg := config.Load()
								container := app.NewContainer(cfg)
								defer func() { _ = container.Shutdown(ctx) }()

								adminTokenUseCase, err := container.AdminTokenUseCase()
								if err != nil {
									return err
								}

								return commands.RunBreakGlassRespond(
									ctx,
									adminTokenUseCase,
									container.Logger(),
									commands.DefaultIO().Writer,
									cmd.String("challenge"),
									cmd.String("response"),
									cmd.String("scope"),
									cmd.String("format"),
								)
							},
						},
						{
							Name:  "derive-verifier",
							Usage: "Derive the break-glass verifier from the support passphrase",
							Flags: []cli.Flag{
								&cli.StringFlag{
									Name:     "passphrase",
									Aliases:  []string{"p"},
									Required: true,
									Usage:    "Support passphrase; never configure this on user machines",
								},
							},
							Action: func(ctx context.Context, cmd *cli.Command) error {
								// Runs offline on the support machine; no container needed.
								return commands.RunDeriveBreakGlassVerifier(
									commands.DefaultIO().Writer,
									cmd.String("passphrase"),
								)
							},
						},
					},
				},
			},
		},
	}
}

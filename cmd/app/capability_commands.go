package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/savegatehq/savegate/cmd/app/commands"
	"github.com/savegatehq/savegate/internal/app"
	"github.com/savegatehq/savegate/internal/config"
)

func getCapabilityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "capability",
			Usage: "Capability lifecycle operations",
			Commands: []*cli.Command{
				{
					Name:  "issue",
					Usage: "Issue a signed capability for an action and game scope",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "action",
							Aliases:  []string{"a"},
							Required: true,
							Usage:    "Action to unlock (save.modify, save.inspect, backup.manage, ui.themes, save.export)",
						},
						&cli.StringFlag{
							Name:     "scope",
							Aliases:  []string{"s"},
							Required: true,
							Usage:    "Game scope the capability covers, or '*' for all games",
						},
						&cli.DurationFlag{
							Name:    "lifetime",
							Aliases: []string{"l"},
							Value:   0,
							Usage:   "How long the capability lives (e.g. 336h); omit for no expiry",
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

						entitlementUseCase, err := container.EntitlementUseCase()
						if err != nil {
							return err
						}

						return commands.RunIssueCapability(
							ctx,
							entitlementUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("action"),
							cmd.String("scope"),
							cmd.Duration("lifetime"),
							cmd.String("format"),
						)
					},
				},
				{
					Name:  "revoke",
					Usage: "Revoke a capability by ID",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "id",
							Aliases:  []string{"i"},
							Required: true,
							Usage:    "Capability ID (32-char hex)",
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

						entitlementUseCase, err := container.EntitlementUseCase()
						if err != nil {
							return err
						}

						return commands.RunRevokeCapability(
							ctx,
							entitlementUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("id"),
							cmd.String("format"),
						)
					},
				},
				{
					Name:  "check",
					Usage: "Run an entitlement check for an action and game scope",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "action",
							Aliases:  []string{"a"},
							Required: true,
							Usage:    "Action to check",
						},
						&cli.StringFlag{
							Name:     "scope",
							Aliases:  []string{"s"},
							Required: true,
							Usage:    "Game scope to check against",
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

						entitlementUseCase, err := container.EntitlementUseCase()
						if err != nil {
							return err
						}

						return commands.RunCheckCapability(
							ctx,
							entitlementUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("action"),
							cmd.String("scope"),
							cmd.String("format"),
						)
					},
				},
				{
					Name:  "purge",
					Usage: "Delete expired and revoked capabilities from the store",
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

						entitlementUseCase, err := container.EntitlementUseCase()
						if err != nil {
							return err
						}

						return commands.RunPurgeCapabilities(
							ctx,
							entitlementUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("format"),
						)
					},
				},
			},
		},
	}
}

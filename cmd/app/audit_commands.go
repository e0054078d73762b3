package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/savegatehq/savegate/cmd/app/commands"
	"github.com/savegatehq/savegate/internal/app"
	"github.com/savegatehq/savegate/internal/config"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "audit",
			Usage: "Audit trail maintenance",
			Commands: []*cli.Command{
				{
					Name:  "prune",
					Usage: "Delete audit entries older than specified days",
					Flags: []cli.Flag{
						&cli.IntFlag{
							Name:     "days",
							Aliases:  []string{"d"},
							Required: true,
							Usage:    "Delete audit entries older than this many days",
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

						return commands.RunPruneAuditEntries(
							ctx,
							entitlementUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							int(cmd.Int("days")),
							cmd.String("format"),
						)
					},
				},
			},
		},
	}
}

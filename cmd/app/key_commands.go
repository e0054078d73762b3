package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/savegatehq/savegate/cmd/app/commands"
	"github.com/savegatehq/savegate/internal/app"
	"github.com/savegatehq/savegate/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "key",
			Usage: "Signing key material operations",
			Commands: []*cli.Command{
				{
					Name:  "generate",
					Usage: "Generate a new signing master key",
					Action: func(ctx context.Context, cmd *cli.Command) error {
						cfg := config.Load()
						container := app.NewContainer(cfg)
						defer func() { _ = container.Shutdown(ctx) }()

						return commands.RunGenerateKey(container.Logger(), commands.DefaultIO().Writer)
					},
				},
			},
		},
	}
}

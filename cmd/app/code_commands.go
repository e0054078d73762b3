package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/savegatehq/savegate/cmd/app/commands"
	"github.com/savegatehq/savegate/internal/app"
	"github.com/savegatehq/savegate/internal/config"
)

func getCodeCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "code",
			Usage: "Activation code operations",
			Commands: []*cli.Command{
				{
					Name:  "generate",
					Usage: "Mint a signed activation code for a bundle",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "bundle",
							Aliases:  []string{"b"},
							Required: true,
							Usage:    "Bundle the code unlocks (pro, trial, supporter)",
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

						activationUseCase, err := container.ActivationUseCase()
						if err != nil {
							return err
						}

						return commands.RunGenerateCode(
							ctx,
							activationUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("bundle"),
							cmd.String("format"),
						)
					},
				},
				{
					Name:  "validate",
					Usage: "Check a code's authenticity without redeeming it",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "code",
							Aliases:  []string{"c"},
							Required: true,
							Usage:    "The activation code to validate",
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

						activationUseCase, err := container.ActivationUseCase()
						if err != nil {
							return err
						}

						return commands.RunValidateCode(
							ctx,
							activationUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("code"),
							cmd.String("format"),
						)
					},
				},
				{
					Name:  "redeem",
					Usage: "Redeem an activation code for a game scope on this machine",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:     "code",
							Aliases:  []string{"c"},
							Required: true,
							Usage:    "The activation code to redeem",
						},
						&cli.StringFlag{
							Name:     "scope",
							Aliases:  []string{"s"},
							Required: true,
							Usage:    "Game scope the granted capabilities cover, or '*' for all games",
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

						activationUseCase, err := container.ActivationUseCase()
						if err != nil {
							return err
						}

						return commands.RunRedeemCode(
							ctx,
							activationUseCase,
							container.Logger(),
							commands.DefaultIO().Writer,
							cmd.String("code"),
							cmd.String("scope"),
							cmd.String("format"),
						)
					},
				},
			},
		},
	}
}

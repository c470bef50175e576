// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand starts the badge HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the badge HTTP server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand initializes configuration and the token database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the token database",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}

// tokenCommand manages stored user token records
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage stored user token records",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add or replace a user's token record",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "uid",
						Usage:    "User identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "refresh-token",
						Usage:    "OAuth refresh token issued for the user",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "access-token",
						Usage: "Current access token, if known",
					},
				},
				Action: r.TokenAdd,
			},
			{
				Name:  "rm",
				Usage: "Remove a user's token record",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "uid",
						Usage:    "User identifier",
						Required: true,
					},
				},
				Action: r.TokenRemove,
			},
			{
				Name:  "ls",
				Usage: "List stored token records",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.TokenList,
			},
		},
	}
}

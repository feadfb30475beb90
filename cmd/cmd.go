package main

import (
	"github.com/urfave/cli/v3"
)

// setupCommand handles first-run initialization: config file and run database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the run history database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml to fill in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Path for the new configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the run history database and apply migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand verifies account credentials without writing anything.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Account authentication operations",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Log in with the configured app passwords and report the resolved identities",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "account",
						Aliases: []string{"a"},
						Usage:   "Which account to check (source, destination, or both)",
						Value:   "both",
					},
				},
				Action: r.AuthCheck,
			},
		},
	}
}

// listCommand handles read and create operations on individual lists.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Inspect and create Bluesky lists",
		Commands: []*cli.Command{
			{
				Name:  "members",
				Usage: "Fetch a list's full membership",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source-list",
						Aliases:  []string{"l"},
						Usage:    "AT-URI of the list (at://<did>/app.bsky.graph.list/<rkey>)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, csv, markdown, json)",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.ListMembers,
			},
			{
				Name:  "create",
				Usage: "Create an empty list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name for the new list",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "purpose",
						Aliases: []string{"p"},
						Usage:   "List purpose (curatelist or modlist)",
						Value:   "curatelist",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Description for the new list",
					},
					&cli.StringFlag{
						Name:    "account",
						Aliases: []string{"a"},
						Usage:   "Account to create the list on (source or destination)",
						Value:   "destination",
					},
				},
				Action: r.ListCreate,
			},
		},
	}
}

// migrateCommand runs the full list migration pipeline.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Copy a list and its members to another account",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full source → destination list migration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source-list",
						Aliases:  []string{"l"},
						Usage:    "AT-URI of the list to copy",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name for the new list on the destination account",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "purpose",
						Aliases: []string{"p"},
						Usage:   "List purpose (curatelist or modlist)",
						Value:   "curatelist",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Description for the new list",
					},
					&cli.BoolFlag{
						Name:  "skip-duplicates",
						Usage: "Write each subject at most once even if the source lists it twice",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Fetch and report the membership without writing to the destination",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the new list in the browser when the migration finishes",
					},
				},
				Action: r.MigrateRun,
			},
			{
				Name:   "ui",
				Usage:  "Run a migration through the interactive terminal UI",
				Action: r.MigrateUI,
			},
		},
	}
}

// historyCommand inspects past migration runs recorded in the database.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded migration runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, most recent first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "status",
						Aliases: []string{"s"},
						Usage:   "Filter by status (pending, running, completed, partial, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit JSON instead of the plain listing",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show one run and its failed member writes",
				ArgsUsage: "<run-id>",
				Action:    r.HistoryShow,
			},
		},
	}
}

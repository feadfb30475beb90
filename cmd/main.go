package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/skylist/internal/repositories"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	sourceService := services.NewBlueskyService(config.Credentials.Source.PDS, nil)
	destService := services.NewBlueskyService(config.Credentials.Destination.PDS, nil)

	// Run history is optional; commands that need it prompt for `setup database`.
	var repo *repositories.RunRepository
	if path := config.Database.Path; path != "" {
		if _, err := os.Stat(path); err == nil {
			if db, err := shared.NewDatabase(path); err == nil {
				shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
				repo = repositories.NewRunRepository(db)
			} else {
				logger.Warn("failed to open run database", "path", path, "error", err)
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: sourceService,
		Dest:   destService,
		Repo:   repo,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "skylist",
		Usage:    "Migrate Bluesky lists between accounts",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

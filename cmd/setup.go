package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/skylist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration file for the user to fill in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("Wrote example config to %s\n", path)
	r.writePlain("Fill in both accounts' handles and App Passwords (Settings → App Passwords).\n")
	r.writePlain("Never use your main account password.\n")

	return nil
}

// SetupDatabase creates the run history database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	if path == "" {
		return fmt.Errorf("%w: database.path is not set", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Info("rolled back most recent migration", "path", path)
		return r.writePlain("Rolled back most recent migration on %s\n", path)
	}

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.logger.Info("database ready", "path", path)
	return r.writePlain("Database ready at %s\n", path)
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/skylist/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthCheck verifies the configured credentials by creating a session for each
// requested account. Nothing is written; the session is discarded on exit.
func (r *Runner) AuthCheck(ctx context.Context, cmd *cli.Command) error {
	which := cmd.String("account")

	accounts := []string{"source", "destination"}
	switch which {
	case "both", "":
	case "source", "destination", "dest":
		accounts = []string{which}
	default:
		return fmt.Errorf("%w: invalid account '%s' (must be 'source', 'destination', or 'both')", shared.ErrInvalidFlag, which)
	}

	for _, name := range accounts {
		svc, account, err := r.resolveAccount(name)
		if err != nil {
			return err
		}
		if err := account.Validate(); err != nil {
			return fmt.Errorf("%s account: %w", name, err)
		}

		if err := svc.Authenticate(ctx, account.Handle, account.AppPassword); err != nil {
			r.writePlain("✗ %s: %v\n", name, err)
			return fmt.Errorf("%w: %s account", shared.ErrAuthFailed, name)
		}

		r.writePlain("✓ %s: @%s (%s)\n", name, svc.Handle(), svc.DID())
	}

	return nil
}

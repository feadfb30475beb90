package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/ui"
	"github.com/urfave/cli/v3"
)

// MigrateUI launches the interactive terminal UI for list migration.
func (r *Runner) MigrateUI(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil || r.dest == nil {
		return fmt.Errorf("%w: account services not initialized", shared.ErrServiceUnavailable)
	}
	if r.engine == nil {
		return fmt.Errorf("%w: migration engine not initialized", shared.ErrServiceUnavailable)
	}
	if err := r.config.Credentials.Source.Validate(); err != nil {
		return fmt.Errorf("source account: %w", err)
	}
	if err := r.config.Credentials.Destination.Validate(); err != nil {
		return fmt.Errorf("destination account: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/skylist-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.config, r.engine, r.source, fileLogger)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

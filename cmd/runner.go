package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/skylist/internal/repositories"
	"github.com/desertthunder/skylist/internal/services"
	"github.com/desertthunder/skylist/internal/shared"
	"github.com/desertthunder/skylist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	source     services.Service
	dest       services.Service
	repo       *repositories.RunRepository
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Source     services.Service
	Dest       services.Service
	Repo       *repositories.RunRepository
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Engine     tasks.Engine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Engine == nil {
		var store tasks.RunStore
		if opts.Repo != nil {
			store = opts.Repo
		}
		pacer := tasks.NewFixedPacer(opts.Config.Pacing)
		opts.Engine = tasks.NewMigrationEngine(opts.Source, opts.Dest, pacer, store)
	}

	return &Runner{
		config:     opts.Config,
		source:     opts.Source,
		dest:       opts.Dest,
		repo:       opts.Repo,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     opts.Engine,
	}
}

// SetLogger swaps the runner's logger, e.g. to redirect logs to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, listCommand, migrateCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveAccount maps an account name to its service and configured credentials.
func (r *Runner) resolveAccount(name string) (services.Service, shared.AccountConfig, error) {
	switch name {
	case "source":
		if r.source == nil {
			return nil, shared.AccountConfig{}, fmt.Errorf("%w: source account service not initialized", shared.ErrServiceUnavailable)
		}
		return r.source, r.config.Credentials.Source, nil
	case "destination", "dest":
		if r.dest == nil {
			return nil, shared.AccountConfig{}, fmt.Errorf("%w: destination account service not initialized", shared.ErrServiceUnavailable)
		}
		return r.dest, r.config.Credentials.Destination, nil
	default:
		return nil, shared.AccountConfig{}, fmt.Errorf("%w: invalid account '%s' (must be 'source' or 'destination')", shared.ErrInvalidArgument, name)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

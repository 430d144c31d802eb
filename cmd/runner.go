package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/search"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	catalog      services.Catalog
	cache        *genres.Cache
	orchestrator *search.Orchestrator
	logger       *log.Logger
	output       io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config       *shared.Config
	Catalog      services.Catalog
	Cache        *genres.Cache
	Orchestrator *search.Orchestrator
	Logger       *log.Logger
	Output       io.Writer
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
	if opts.Cache == nil {
		opts.Cache = genres.NewCache(nil, 0, nil, opts.Logger)
	}
	if opts.Orchestrator == nil {
		opts.Orchestrator = search.NewOrchestrator(opts.Catalog, opts.Cache, opts.Logger, nil)
	}

	return &Runner{
		config:       opts.Config,
		catalog:      opts.Catalog,
		cache:        opts.Cache,
		orchestrator: opts.Orchestrator,
		logger:       opts.Logger,
		output:       opts.Output,
	}
}

// SetLogger replaces the runner's logger. Used by the TUI command to move
// logging off stderr.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// openHistory opens the configured SQLite database and returns a search
// history repository. The caller owns the returned database handle.
//
// A missing database file is not an error: the repository is nil and history
// is simply disabled until `crate setup database` runs.
func (r *Runner) openHistory() (*repositories.SearchRepository, *sql.DB, error) {
	path := r.config.Database.Path
	if path == "" {
		return nil, nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, nil
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return repositories.NewSearchRepository(db), db, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, searchCommand, genresCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reelpick/internal/posters"
	"github.com/desertthunder/reelpick/internal/repositories"
	"github.com/desertthunder/reelpick/internal/services"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	backend    services.Backend
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config flag before any command runs; a nil Backend is built from it.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Backend    services.Backend
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// rawGetter is implemented by backends that support unchecked GETs.
type rawGetter interface {
	Raw(ctx context.Context, path string) (*services.APIResponse, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		backend:    opts.Backend,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "reelpick",
		Usage:   "Browse random movie recommendations in the browser or terminal",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, tuiCommand, moviesCommand, posterCommand, apiCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads configuration and builds the backend client unless they were injected.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case err == nil:
			r.config = config
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
			r.config = shared.DefaultConfig()
		default:
			return ctx, err
		}
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))

	if r.backend == nil {
		opts := services.OptionsFromConfig(r.config.Backend)
		opts.Client = r.httpClient
		opts.Logger = shared.WithLogger(r.logger, "component", "backend")
		r.backend = services.NewBackendService(opts)
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// openResolver builds a poster resolver over the configured cache backend.
// The returned closer releases the cache connection.
func (r *Runner) openResolver(ctx context.Context) (*posters.Resolver, io.Closer, error) {
	store, closer, err := repositories.OpenPosterStore(ctx, r.config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open poster cache: %w", err)
	}

	opts := posters.ResolverOptions{
		MaxWidth:  r.config.Posters.MaxWidth,
		MaxHeight: r.config.Posters.MaxHeight,
		Logger:    shared.WithLogger(r.logger, "component", "posters"),
	}
	if store != nil {
		opts.Store = store
	}
	return posters.NewResolver(r.backend, nil, opts), closer, nil
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

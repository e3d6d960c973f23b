package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scorecard/internal/config"
	"scorecard/internal/infrastructure"
	"scorecard/internal/services"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	input      string
	logLevel   string
}

// env is what a subcommand needs once flags and configuration are resolved.
type env struct {
	cfg     *config.Config
	paths   *config.Paths
	input   string
	logger  *slog.Logger
	service *services.ScorecardService
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "scorecard",
		Short: "Inspect and export a project evaluation scorecard",
		Long: `Reads the scorecard CSV export (latin1, ';' separated) and reports the
final score, classification, met requirements and per-theme totals.

Configuration is read from config.yaml or configs/config.yaml when present,
then from SCORECARD_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file")
	cmd.PersistentFlags().StringVar(&opts.input, "input", "", "scorecard CSV (overrides input.file)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (overrides logging.level)")

	cmd.AddCommand(
		newSummaryCmd(opts),
		newExportCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// setup resolves configuration for one invocation. Logs go to stderr so
// stdout stays clean for piping.
func (o *globalOptions) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	cfg.Watch.Enabled = false

	logger := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}

	input := paths.InputFile
	if o.input != "" {
		if input, err = filepath.Abs(o.input); err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", o.input, err)
		}
	}

	svc := services.NewScorecardService(input, services.NewLoader(cfg.Input, logger), logger)

	return &env{cfg: cfg, paths: paths, input: input, logger: logger, service: svc}, nil
}

// loadError is the two-tier message people see when the input cannot be
// loaded. The cause stays available to errors.Is.
type loadError struct {
	message string
	cause   error
}

func (e *loadError) Error() string { return e.message }
func (e *loadError) Unwrap() error { return e.cause }

func newLoadError(path string, err error) error {
	var le *loadError
	if errors.As(err, &le) {
		return err
	}
	return &loadError{message: services.LoadFailureMessage(path, err), cause: err}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

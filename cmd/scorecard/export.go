package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scorecard/internal/exporter"
	"scorecard/internal/services"
	"scorecard/internal/validation"
)

type exportOptions struct {
	format string
	output string
	themes []string
	status string
	force  bool
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the requirement table to CSV or XLSX",
		Long: `Writes the filtered requirement table. Without --output the file goes to
the configured export directory as scorecard.<format>.

Example: scorecard export --format xlsx --status absent --theme "Indicadores de Projeto Rotineiro"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, eo)
		},
	}

	cmd.Flags().StringVar(&eo.format, "format", "csv", "csv|xlsx")
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "output file")
	cmd.Flags().StringArrayVar(&eo.themes, "theme", nil, "only this theme (repeatable)")
	cmd.Flags().StringVar(&eo.status, "status", "all", "all|present|absent")
	cmd.Flags().BoolVar(&eo.force, "force", false, "overwrite an existing output file")
	return cmd
}

func runExport(cmd *cobra.Command, opts *globalOptions, eo *exportOptions) error {
	format, err := exporter.ParseFormat(eo.format)
	if err != nil {
		return err
	}

	if err := validation.NewQueryValidator().Validate(validation.FilterQuery{Themes: eo.themes, Status: eo.status}); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	filter, err := services.ParseFilter(eo.themes, eo.status)
	if err != nil {
		return err
	}

	e, err := opts.setup(cmd)
	if err != nil {
		return err
	}

	output := eo.output
	if output == "" {
		output = e.paths.ExportPath(format.FileName())
	}
	if fileExists(output) && !eo.force {
		return fmt.Errorf("%s already exists; use --force to overwrite", output)
	}
	if err := validation.NewFileValidator(e.logger).ValidateOutputDirectory(filepath.Dir(output)); err != nil {
		return err
	}

	view, err := e.service.View(cmd.Context(), filter)
	if err != nil {
		return newLoadError(e.input, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := exporter.Export(f, format, view); err != nil {
		f.Close()
		os.Remove(output)
		return fmt.Errorf("%s export failed: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	e.logger.Info("export written",
		slog.String("format", string(format)),
		slog.String("path", output),
		slog.Int("rows", len(view.Requirements)))
	fmt.Fprintf(cmd.OutOrStdout(), "%d requisitos exportados para %s\n", len(view.Requirements), output)
	return nil
}

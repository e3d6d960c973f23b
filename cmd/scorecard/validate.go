package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scorecard/internal/validation"
)

func newValidateCmd(opts *globalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the input file and list data warnings",
		Long: `Loads the scorecard and lists every value that fell back to a default
and every band anomaly. With --strict any warning is a failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			if err := validation.NewFileValidator(e.logger).ValidateInputFile(e.input); err != nil {
				return newLoadError(e.input, err)
			}

			b, err := e.service.Bundle(cmd.Context())
			if err != nil {
				return newLoadError(e.input, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d linhas, %d requisitos, %d faixas\n",
				e.input, b.Source.Rows, b.TotalRequirements, len(b.Bands))
			if len(b.Warnings) == 0 {
				fmt.Fprintln(out, "Nenhum aviso.")
				return nil
			}
			if err := writeWarnings(out, b.Warnings); err != nil {
				return err
			}

			if strict {
				return fmt.Errorf("%d warnings found", len(b.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any warning is found")
	return cmd
}

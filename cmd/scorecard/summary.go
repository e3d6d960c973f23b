package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"scorecard/internal/scorecard"
)

// summaryReport is the --json shape of the summary command.
type summaryReport struct {
	FinalScore        int                        `json:"final_score"`
	Classification    string                     `json:"classification"`
	RequirementsMet   int                        `json:"requirements_met"`
	TotalRequirements int                        `json:"total_requirements"`
	Bands             []scorecard.Band           `json:"bands"`
	ThemeTotals       []scorecard.ThemeTotal     `json:"theme_totals"`
	Breakdown         []scorecard.ThemeBreakdown `json:"breakdown"`
	Summary           scorecard.BreakdownSummary `json:"summary"`
	Warnings          []scorecard.Warning        `json:"warnings"`
	Source            scorecard.Source           `json:"source"`
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the score, classification, theme totals and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			view, err := e.service.View(cmd.Context(), scorecard.Filter{})
			if err != nil {
				return newLoadError(e.input, err)
			}

			if asJSON {
				return writeSummaryJSON(cmd.OutOrStdout(), view)
			}
			return writeSummaryText(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func writeSummaryJSON(w io.Writer, view *scorecard.View) error {
	b := view.Bundle
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaryReport{
		FinalScore:        b.FinalScore,
		Classification:    b.Classification,
		RequirementsMet:   b.RequirementsMet,
		TotalRequirements: b.TotalRequirements,
		Bands:             b.Bands,
		ThemeTotals:       b.ThemeTotals,
		Breakdown:         view.Breakdown,
		Summary:           view.Summary,
		Warnings:          b.Warnings,
		Source:            b.Source,
	})
}

func writeSummaryText(w io.Writer, view *scorecard.View) error {
	b := view.Bundle
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Pontuação Geral:\t%d Pontos\n", b.FinalScore)
	fmt.Fprintf(tw, "Classificação do Projeto:\t%s\n", b.Classification)
	fmt.Fprintf(tw, "Requisitos Atendidos:\t%d de %d\n", b.RequirementsMet, b.TotalRequirements)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Tema Principal\tPresente\tAusente")
	for _, t := range b.ThemeTotals {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Theme, t.Present, t.Absent)
	}

	if len(view.Breakdown) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Tema Principal\tAtendidos\tAvaliados\tConclusão")
		for _, t := range view.Breakdown {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\n", t.Theme, t.Met, t.Evaluated, t.CompletionRate*100)
		}
		fmt.Fprintf(tw, "Média\t\t\t%.0f%%\n", view.Summary.MeanCompletion*100)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	return writeWarnings(w, b.Warnings)
}

func writeWarnings(w io.Writer, warnings []scorecard.Warning) error {
	if len(warnings) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nAvisos de Dados (%d):\n", len(warnings)); err != nil {
		return err
	}
	for _, warn := range warnings {
		var err error
		if warn.Line > 0 {
			_, err = fmt.Fprintf(w, "  Linha %d: %s\n", warn.Line, warn.Message)
		} else {
			_, err = fmt.Fprintf(w, "  %s\n", warn.Message)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

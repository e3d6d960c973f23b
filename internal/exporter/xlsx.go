package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"scorecard/internal/scorecard"
)

// Workbook sheet names.
const (
	SheetSummary      = "Resumo"
	SheetRequirements = "Requisitos"
	SheetThemeTotals  = "Totais por Tema"
	SheetBands        = "Faixas"
	SheetWarnings     = "Avisos"
)

// WriteXLSX writes view as a workbook to w.
func WriteXLSX(w io.Writer, view *scorecard.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetRequirements, SheetThemeTotals, SheetBands, SheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	sb := &sheetBuilder{f: f, bold: bold}
	sb.summary(view)
	sb.requirements(view.Requirements)
	sb.themeTotals(view.Bundle.ThemeTotals, view.Breakdown)
	sb.bands(view.Bundle.Bands)
	sb.warnings(view.Bundle.Warnings)
	if sb.err != nil {
		return sb.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetBuilder keeps the first error so sheet code reads top to bottom.
type sheetBuilder struct {
	f    *excelize.File
	bold int
	err  error
}

func (sb *sheetBuilder) row(sheet string, row int, values ...interface{}) {
	if sb.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		sb.err = err
		return
	}
	if err := sb.f.SetSheetRow(sheet, cell, &values); err != nil {
		sb.err = fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
}

func (sb *sheetBuilder) header(sheet string, columns ...string) {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	sb.row(sheet, 1, values...)
	if sb.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		sb.err = err
		return
	}
	if err := sb.f.SetCellStyle(sheet, "A1", last, sb.bold); err != nil {
		sb.err = err
		return
	}
	lastCol, _, _ := excelize.SplitCellName(last)
	if err := sb.f.SetColWidth(sheet, "A", lastCol, 28); err != nil {
		sb.err = err
	}
}

func (sb *sheetBuilder) summary(view *scorecard.View) {
	b := view.Bundle
	sb.header(SheetSummary, "Indicador", "Valor")

	themes := "Todos"
	if len(view.Filter.Themes) > 0 {
		themes = strings.Join(view.Filter.Themes, ", ")
	}

	rows := [][]interface{}{
		{"Pontuação Geral Final", b.FinalScore},
		{"Classificação", b.Classification},
		{"Requisitos Atendidos", b.RequirementsMet},
		{"Total de Requisitos", b.TotalRequirements},
		{"Filtro de Temas", themes},
		{"Filtro de Status", view.Filter.Status.Label()},
		{"Conclusão Média", formatPercent(view.Summary.MeanCompletion)},
		{"Arquivo", b.Source.Path},
		{"Digest", b.Source.Digest},
	}
	for i, r := range rows {
		sb.row(SheetSummary, i+2, r...)
	}
}

func (sb *sheetBuilder) requirements(reqs []scorecard.Requirement) {
	sb.header(SheetRequirements, RequirementHeaders...)
	for i, r := range reqs {
		sb.row(SheetRequirements, i+2, r.Theme, r.Label, r.Present, r.Absent, statusText(r))
	}
}

func (sb *sheetBuilder) themeTotals(totals []scorecard.ThemeTotal, breakdown []scorecard.ThemeBreakdown) {
	sb.header(SheetThemeTotals, "Tema", scorecard.ColumnPresent, scorecard.ColumnAbsent)
	row := 2
	for _, t := range totals {
		sb.row(SheetThemeTotals, row, t.Theme, t.Present, t.Absent)
		row++
	}

	if len(breakdown) == 0 {
		return
	}
	row++
	sb.row(SheetThemeTotals, row, "Tema", "Avaliados", "Atendidos", "Conclusão")
	row++
	for _, b := range breakdown {
		sb.row(SheetThemeTotals, row, b.Theme, b.Evaluated, b.Met, formatPercent(b.CompletionRate))
		row++
	}
}

func (sb *sheetBuilder) bands(bands []scorecard.Band) {
	sb.header(SheetBands, "Faixa", "Mínimo", "Máximo")
	for i, b := range bands {
		sb.row(SheetBands, i+2, b.Label, b.Min, b.Max)
	}
}

func (sb *sheetBuilder) warnings(warnings []scorecard.Warning) {
	sb.header(SheetWarnings, "Linha", "Código", "Campo", "Valor", "Mensagem")
	for i, w := range warnings {
		sb.row(SheetWarnings, i+2, w.Line, w.Code, w.Field, w.Value, w.Message)
	}
}

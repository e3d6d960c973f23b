// Package exporter writes scorecard views to downloadable files.
//
// CSV output uses the semicolon delimiter and a UTF-8 BOM so spreadsheet
// applications in Portuguese locales open it without an import wizard.
// XLSX output is a workbook with one sheet per section of the dashboard.
//
// Example usage:
//
//	view := scorecard.NewView(bundle, scorecard.Filter{Status: scorecard.StatusAbsent})
//	if err := exporter.Export(w, exporter.FormatXLSX, view); err != nil {
//		return err
//	}
package exporter

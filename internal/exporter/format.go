package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"scorecard/internal/scorecard"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName is the suggested download name.
func (f Format) FileName() string {
	return "scorecard." + string(f)
}

// Export writes view in the given format.
func Export(w io.Writer, format Format, view *scorecard.View) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, WriteOptions{
			Headers:   RequirementHeaders,
			Records:   RequirementRecords(view.Requirements),
			Delimiter: ';',
			BOMPrefix: true,
		})
	case FormatXLSX:
		return WriteXLSX(w, view)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Requirement status texts.
const (
	StatusMet    = "Atendido"
	StatusNotMet = "Não atendido"
)

// RequirementHeaders is the header row of the requirement table.
var RequirementHeaders = []string{
	scorecard.ColumnTheme,
	scorecard.ColumnLabel,
	scorecard.ColumnPresent,
	scorecard.ColumnAbsent,
	"Status",
}

// RequirementRecords flattens requirements into table rows.
func RequirementRecords(reqs []scorecard.Requirement) [][]string {
	records := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		records = append(records, []string{
			r.Theme,
			r.Label,
			strconv.Itoa(r.Present),
			strconv.Itoa(r.Absent),
			statusText(r),
		})
	}
	return records
}

func statusText(r scorecard.Requirement) string {
	if r.Met() {
		return StatusMet
	}
	return StatusNotMet
}

// formatPercent renders a 0..1 rate as a whole percentage.
func formatPercent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

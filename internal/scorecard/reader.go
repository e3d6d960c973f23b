package scorecard

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "scorecard/internal/errors"
)

// ColumnMode selects how the four scorecard columns are located.
type ColumnMode string

const (
	// ColumnsByHeader matches header names, ignoring case, accents and spacing.
	ColumnsByHeader ColumnMode = "header"
	// ColumnsByPosition takes the first four non-empty columns in order.
	ColumnsByPosition ColumnMode = "positional"
)

// Canonical column names, in positional order.
const (
	ColumnTheme   = "Tema Principal"
	ColumnLabel   = "Requisitos Necessarios"
	ColumnPresent = "Presente"
	ColumnAbsent  = "Ausente"
)

var canonicalColumns = []string{ColumnTheme, ColumnLabel, ColumnPresent, ColumnAbsent}

// headerAliases maps normalized header text to a canonical column.
var headerAliases = map[string]string{
	"tema principal":         ColumnTheme,
	"tema":                   ColumnTheme,
	"requisitos necessarios": ColumnLabel,
	"requisito necessario":   ColumnLabel,
	"requisitos":             ColumnLabel,
	"requisito":              ColumnLabel,
	"presente":               ColumnPresent,
	"presentes":              ColumnPresent,
	"ausente":                ColumnAbsent,
	"ausentes":               ColumnAbsent,
}

// ReadOptions controls decoding and column mapping.
type ReadOptions struct {
	Encoding  string
	Delimiter rune
	Columns   ColumnMode
}

// DefaultReadOptions matches the spreadsheet export: latin1, semicolons,
// header-matched columns.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Encoding:  "latin1",
		Delimiter: ';',
		Columns:   ColumnsByHeader,
	}
}

// Table is the typed form of the input file.
type Table struct {
	Header   []string
	Rows     []Row
	Warnings []Warning
}

type columnIndex struct {
	theme, label, present, absent int
}

// Decoder returns the text decoder for a configured encoding name.
func Decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "utf-8", "utf8":
		return xunicode.UTF8BOM.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// ReadTable decodes and parses the whole input. Columns that are empty in
// every data row are dropped before mapping. Structural problems (no header,
// missing columns, malformed CSV) are fatal; cell contents are never
// interpreted here.
func ReadTable(r io.Reader, opts ReadOptions) (*Table, error) {
	dec, err := Decoder(opts.Encoding)
	if err != nil {
		return nil, apperrors.NewConfigError("unsupported input encoding", err)
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, apperrors.NewParsingError("scorecard input is empty", ErrEmptyInput)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("cannot read header row", err)
	}

	var records [][]string
	var lines []int
	width := len(header)
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed CSV", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
		if len(rec) > width {
			width = len(rec)
		}
	}

	header = padCells(header, width)
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range records {
		records[i] = padCells(records[i], width)
	}

	empty := emptyColumns(records, width)

	var (
		idx      columnIndex
		warnings []Warning
	)
	switch opts.Columns {
	case ColumnsByPosition:
		idx, err = positionalColumns(empty)
	default:
		idx, warnings, err = headerColumns(header, empty)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		rows = append(rows, Row{
			Line:             lines[i],
			Theme:            rec[idx.theme],
			RequirementLabel: rec[idx.label],
			PresentRaw:       rec[idx.present],
			AbsentRaw:        rec[idx.absent],
		})
	}

	return &Table{Header: header, Rows: rows, Warnings: warnings}, nil
}

func padCells(rec []string, width int) []string {
	out := make([]string, width)
	for i, cell := range rec {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

func emptyColumns(records [][]string, width int) []bool {
	empty := make([]bool, width)
	for c := 0; c < width; c++ {
		empty[c] = true
		for _, rec := range records {
			if rec[c] != "" {
				empty[c] = false
				break
			}
		}
	}
	return empty
}

func positionalColumns(empty []bool) (columnIndex, error) {
	var kept []int
	for c, isEmpty := range empty {
		if !isEmpty {
			kept = append(kept, c)
		}
	}
	if len(kept) != len(canonicalColumns) {
		return columnIndex{}, apperrors.NewParsingError(
			fmt.Sprintf("expected %d non-empty columns, found %d", len(canonicalColumns), len(kept)),
			ErrColumnCount,
		).WithContext("found", len(kept))
	}
	return columnIndex{theme: kept[0], label: kept[1], present: kept[2], absent: kept[3]}, nil
}

func headerColumns(header []string, empty []bool) (columnIndex, []Warning, error) {
	found := make(map[string]int, len(canonicalColumns))
	var warnings []Warning

	for c, name := range header {
		canonical, known := headerAliases[NormalizeHeader(name)]
		if known {
			if _, dup := found[canonical]; !dup {
				found[canonical] = c
				continue
			}
		}
		if empty[c] {
			continue
		}
		field := name
		if field == "" {
			field = fmt.Sprintf("column %d", c+1)
		}
		warnings = append(warnings, Warning{
			Line:    1,
			Field:   field,
			Code:    WarnColumnIgnored,
			Message: fmt.Sprintf("Coluna %q não faz parte do scorecard e foi ignorada", field),
		})
	}

	var missing []string
	for _, col := range canonicalColumns {
		if _, ok := found[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, nil, apperrors.NewParsingError(
			"required columns missing: "+strings.Join(missing, ", "),
			ErrMissingColumns,
		).WithContext("missing", missing)
	}

	return columnIndex{
		theme:   found[ColumnTheme],
		label:   found[ColumnLabel],
		present: found[ColumnPresent],
		absent:  found[ColumnAbsent],
	}, warnings, nil
}

// NormalizeHeader folds case, accents and inner whitespace so that
// "Requisitos  Necessários" and "requisitos necessarios" compare equal.
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

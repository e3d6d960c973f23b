package scorecard

import (
	"fmt"
	"strings"
)

const (
	defaultBandMin = 0
	defaultBandMax = 100
)

// Build derives every aggregate from a parsed table. It never fails: values
// that cannot be coerced fall back to their defaults and are reported in
// Bundle.Warnings. The returned bundle has no Source; callers that know the
// input set it before publishing the bundle.
func Build(table *Table, rules Rules) *Bundle {
	b := &Bundle{
		Bands:        make([]Band, 0),
		Requirements: make([]Requirement, 0),
		ThemeTotals:  make([]ThemeTotal, 0),
		Warnings:     make([]Warning, 0, len(table.Warnings)),
	}
	b.Warnings = append(b.Warnings, table.Warnings...)

	b.FinalScore = b.finalScore(table.Rows, rules)
	b.Bands = b.bands(table.Rows, rules)
	b.validateBands()
	b.Classification = b.classify(rules)
	b.collect(table.Rows, rules)
	b.Source.Rows = len(table.Rows)

	return b
}

func (b *Bundle) warn(w Warning) {
	b.Warnings = append(b.Warnings, w)
}

func (b *Bundle) finalScore(rows []Row, rules Rules) int {
	for _, row := range rows {
		if row.RequirementLabel != rules.ScoreLabel {
			continue
		}
		res := CoerceInt(row.PresentRaw)
		if !res.OK() {
			b.warn(Warning{
				Line:    row.Line,
				Field:   ColumnPresent,
				Value:   row.PresentRaw,
				Code:    WarnScoreInvalid,
				Message: fmt.Sprintf("Pontuação final %q não é numérica; usando 0", row.PresentRaw),
			})
		}
		return res.Or(0)
	}

	b.warn(Warning{
		Code:    WarnScoreMissing,
		Message: fmt.Sprintf("Linha %q não encontrada; usando 0", rules.ScoreLabel),
	})
	return 0
}

// bands splits "min-max" cells on the first '-'. Everything after it is the
// upper bound, so "10-20-30" has no numeric maximum.
func (b *Bundle) bands(rows []Row, rules Rules) []Band {
	bands := make([]Band, 0)
	for _, row := range rows {
		if row.Theme != rules.BandTheme {
			continue
		}

		minRaw, maxRaw, found := strings.Cut(row.PresentRaw, "-")
		minRes := CoerceFloat(minRaw)
		maxRes := FloatResult{Status: CoercionEmpty}
		if found {
			maxRes = CoerceFloat(maxRaw)
		}

		if !minRes.OK() {
			b.warn(Warning{
				Line:    row.Line,
				Field:   ColumnPresent,
				Value:   row.PresentRaw,
				Code:    WarnBandMinInvalid,
				Message: fmt.Sprintf("Faixa %q sem limite inferior numérico; usando %d", row.RequirementLabel, defaultBandMin),
			})
		}
		if !maxRes.OK() {
			b.warn(Warning{
				Line:    row.Line,
				Field:   ColumnPresent,
				Value:   row.PresentRaw,
				Code:    WarnBandMaxInvalid,
				Message: fmt.Sprintf("Faixa %q sem limite superior numérico; usando %d", row.RequirementLabel, defaultBandMax),
			})
		}

		bands = append(bands, Band{
			Label: row.RequirementLabel,
			Min:   minRes.Or(defaultBandMin),
			Max:   maxRes.Or(defaultBandMax),
			Raw:   row.PresentRaw,
			Line:  row.Line,
		})
	}
	return bands
}

// validateBands reports inverted and overlapping ranges. Classification
// still takes the first match, so these are warnings only.
func (b *Bundle) validateBands() {
	for i, band := range b.Bands {
		if band.Min > band.Max {
			b.warn(Warning{
				Line:    band.Line,
				Field:   ColumnPresent,
				Value:   band.Raw,
				Code:    WarnBandInverted,
				Message: fmt.Sprintf("Faixa %q tem limite inferior %g maior que o superior %g", band.Label, band.Min, band.Max),
			})
		}
		for _, prev := range b.Bands[:i] {
			if prev.Min <= band.Max && band.Min <= prev.Max {
				b.warn(Warning{
					Line:    band.Line,
					Field:   ColumnPresent,
					Value:   band.Raw,
					Code:    WarnBandOverlap,
					Message: fmt.Sprintf("Faixa %q sobrepõe %q (linha %d); a faixa anterior prevalece", band.Label, prev.Label, prev.Line),
				})
			}
		}
	}
}

func (b *Bundle) classify(rules Rules) string {
	score := float64(b.FinalScore)
	for _, band := range b.Bands {
		if band.Contains(score) {
			return band.Label
		}
	}
	b.warn(Warning{
		Code:    WarnScoreUnclassified,
		Value:   fmt.Sprint(b.FinalScore),
		Message: fmt.Sprintf("Pontuação %d fora de todas as faixas", b.FinalScore),
	})
	return rules.Unclassified
}

// collect coerces counts and gathers requirements and theme totals in file
// order.
func (b *Bundle) collect(rows []Row, rules Rules) {
	totalMarker := strings.ToLower(rules.TotalMarker)
	themeMarker := strings.ToLower(rules.ThemeTotalMarker)

	for _, row := range rows {
		label := strings.ToLower(row.RequirementLabel)
		isThemeTotal := themeMarker != "" && strings.Contains(label, themeMarker)
		isCandidate := !strings.Contains(label, totalMarker) && rules.evaluable(row.Theme)
		if !isThemeTotal && !isCandidate {
			continue
		}

		present := b.count(row, ColumnPresent, row.PresentRaw)
		absent := b.count(row, ColumnAbsent, row.AbsentRaw)

		if isCandidate && present+absent > 0 {
			b.Requirements = append(b.Requirements, Requirement{
				Theme:   row.Theme,
				Label:   row.RequirementLabel,
				Present: present,
				Absent:  absent,
				Line:    row.Line,
			})
			b.RequirementsMet += present
		}

		if isThemeTotal {
			b.ThemeTotals = append(b.ThemeTotals, ThemeTotal{
				Theme:   themeFromTotal(row.RequirementLabel, rules.ThemeTotalMarker),
				Label:   row.RequirementLabel,
				Present: present,
				Absent:  absent,
				Line:    row.Line,
			})
		}
	}
	b.TotalRequirements = len(b.Requirements)
}

// count coerces one count cell. Blank cells are a plain zero; anything else
// that is not a number is a fallback worth reporting.
func (b *Bundle) count(row Row, field, raw string) int {
	res := CoerceInt(raw)
	if res.Status == CoercionInvalid {
		b.warn(Warning{
			Line:    row.Line,
			Field:   field,
			Value:   raw,
			Code:    WarnCountInvalid,
			Message: fmt.Sprintf("Valor de %s %q em %q não é numérico; usando 0", field, raw, row.RequirementLabel),
		})
	}
	return res.Or(0)
}

// themeFromTotal strips the first case-insensitive occurrence of marker.
func themeFromTotal(label, marker string) string {
	i := strings.Index(strings.ToLower(label), strings.ToLower(marker))
	if i < 0 {
		return label
	}
	theme := strings.TrimSpace(label[:i] + label[i+len(marker):])
	if theme == "" {
		return label
	}
	return theme
}

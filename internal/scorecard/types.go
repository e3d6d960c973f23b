// Package scorecard turns a project evaluation CSV into an immutable bundle of
// aggregates (score, classification, bands, requirements and theme totals)
// and builds filtered presentation views on top of it.
package scorecard

// Row is one data line of the input after column mapping. Cell values are
// trimmed but otherwise untouched.
type Row struct {
	Line             int
	Theme            string
	RequirementLabel string
	PresentRaw       string
	AbsentRaw        string
}

// Band is one classification range. Bounds are inclusive.
type Band struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Raw   string  `json:"raw"`
	Line  int     `json:"line"`
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score float64) bool {
	return b.Min <= score && score <= b.Max
}

// Requirement is a checklist item that counts toward the met/total KPI.
type Requirement struct {
	Theme   string `json:"theme"`
	Label   string `json:"label"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Line    int    `json:"line"`
}

// Met reports whether the requirement was found present at least once.
func (r Requirement) Met() bool {
	return r.Present > 0
}

// ThemeTotal is a per-theme "Total Geral" summary row.
type ThemeTotal struct {
	Theme   string `json:"theme"`
	Label   string `json:"label"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Line    int    `json:"line"`
}

// Warning codes raised while building a bundle.
const (
	WarnScoreMissing      = "score_missing"
	WarnScoreInvalid      = "score_invalid"
	WarnScoreUnclassified = "score_unclassified"
	WarnBandMinInvalid    = "band_min_invalid"
	WarnBandMaxInvalid    = "band_max_invalid"
	WarnBandInverted      = "band_inverted"
	WarnBandOverlap       = "band_overlap"
	WarnCountInvalid      = "count_invalid"
	WarnColumnIgnored     = "column_ignored"
)

// Warning records a value that fell back to a default or a data anomaly that
// did not stop the load. Line is 1-based in the input file; 0 when the
// warning is not tied to a line.
type Warning struct {
	Line    int    `json:"line,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Source describes the input a bundle was built from. It depends only on the
// path and content, so reloading an unchanged file yields an equal bundle.
type Source struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Size   int64  `json:"size"`
	Rows   int    `json:"rows"`
}

// Bundle is the result of one load. It is never mutated after Build returns
// and may be shared between goroutines.
type Bundle struct {
	FinalScore        int           `json:"final_score"`
	Classification    string        `json:"classification"`
	Bands             []Band        `json:"bands"`
	RequirementsMet   int           `json:"requirements_met"`
	TotalRequirements int           `json:"total_requirements"`
	Requirements      []Requirement `json:"requirements"`
	ThemeTotals       []ThemeTotal  `json:"theme_totals"`
	Warnings          []Warning     `json:"warnings"`
	Source            Source        `json:"source"`
}

// Rules holds the sentinel values that give special rows their meaning.
type Rules struct {
	ScoreLabel       string
	BandTheme        string
	ThemeTotalMarker string
	TotalMarker      string
	Unclassified     string
	EvaluableThemes  []string
}

// DefaultRules returns the sentinels used by the scorecard export.
func DefaultRules() Rules {
	return Rules{
		ScoreLabel:       "Pontuação Geral Final",
		BandTheme:        "Classificação por Faixas",
		ThemeTotalMarker: "Total Geral",
		TotalMarker:      "Total",
		Unclassified:     "Não definido",
		EvaluableThemes: []string{
			"Análise do Desafio Tecnológico",
			"Avaliação de Recursos e Metodologia",
			"Indicadores de Projeto Rotineiro",
		},
	}
}

func (r Rules) evaluable(theme string) bool {
	for _, t := range r.EvaluableThemes {
		if t == theme {
			return true
		}
	}
	return false
}

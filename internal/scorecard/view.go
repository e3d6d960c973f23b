package scorecard

import (
	"github.com/montanaflynn/stats"
)

// Chart colors used by the dashboard.
const (
	ColorPresent = "mediumseagreen"
	ColorAbsent  = "lightcoral"
)

// GaugeColors paints the first bands of the gauge, in band order.
var GaugeColors = []string{"#2ECC71", "#F1C40F", "#E74C3C", "#9B59B6"}

const defaultGaugeMax = 100

// Slice is one donut segment.
type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// GaugeStep is a colored band range on the gauge axis.
type GaugeStep struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Color string  `json:"color"`
}

// View is everything one dashboard render needs. Building a view never
// changes the bundle.
type View struct {
	Bundle       *Bundle          `json:"-"`
	Filter       Filter           `json:"filter"`
	ThemeOptions []string         `json:"theme_options"`
	Requirements []Requirement    `json:"requirements"`
	Donut        []Slice          `json:"donut"`
	GaugeMax     float64          `json:"gauge_max"`
	GaugeSteps   []GaugeStep      `json:"gauge_steps"`
	Breakdown    []ThemeBreakdown `json:"breakdown"`
	Summary      BreakdownSummary `json:"summary"`
}

// NewView applies f to the bundle's requirements and derives chart data.
// KPIs, donut and gauge always describe the whole scorecard; only the table
// and the breakdown follow the filter.
func NewView(b *Bundle, f Filter) *View {
	if f.Status == "" {
		f.Status = StatusAll
	}
	filtered := f.Apply(b.Requirements)
	breakdown := Breakdown(filtered)

	return &View{
		Bundle:       b,
		Filter:       f,
		ThemeOptions: ThemeOptions(b.Requirements),
		Requirements: filtered,
		Donut:        DonutSlices(b),
		GaugeMax:     GaugeMax(b.Bands),
		GaugeSteps:   GaugeSteps(b.Bands),
		Breakdown:    breakdown,
		Summary:      Summarize(breakdown),
	}
}

// ThemeOptions lists the distinct requirement themes in first-seen order.
func ThemeOptions(reqs []Requirement) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range reqs {
		if !seen[r.Theme] {
			seen[r.Theme] = true
			out = append(out, r.Theme)
		}
	}
	return out
}

// DonutSlices splits the requirement count into met and not met. The absent
// side is clamped at zero when presences exceed the requirement count.
func DonutSlices(b *Bundle) []Slice {
	absent := b.TotalRequirements - b.RequirementsMet
	if absent < 0 {
		absent = 0
	}
	return []Slice{
		{Label: "Presente", Value: b.RequirementsMet, Color: ColorPresent},
		{Label: "Ausente", Value: absent, Color: ColorAbsent},
	}
}

// GaugeMax is the highest band upper bound, or 100 without bands.
func GaugeMax(bands []Band) float64 {
	if len(bands) == 0 {
		return defaultGaugeMax
	}
	maxes := make(stats.Float64Data, 0, len(bands))
	for _, b := range bands {
		maxes = append(maxes, b.Max)
	}
	m, err := stats.Max(maxes)
	if err != nil || m <= 0 {
		return defaultGaugeMax
	}
	return m
}

// GaugeSteps pairs bands with GaugeColors; bands beyond the palette are not
// painted.
func GaugeSteps(bands []Band) []GaugeStep {
	n := len(bands)
	if n > len(GaugeColors) {
		n = len(GaugeColors)
	}
	steps := make([]GaugeStep, 0, n)
	for i := 0; i < n; i++ {
		steps = append(steps, GaugeStep{
			Label: bands[i].Label,
			Min:   bands[i].Min,
			Max:   bands[i].Max,
			Color: GaugeColors[i],
		})
	}
	return steps
}

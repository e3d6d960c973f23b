package scorecard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/shared/testutil"
)

func sampleBundle(t *testing.T) *Bundle {
	t.Helper()
	table, err := ReadTable(bytes.NewReader(testutil.EncodeLatin1(t, testutil.SampleScorecardCSV)), DefaultReadOptions())
	require.NoError(t, err)
	return Build(table, DefaultRules())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    StatusFilter
		wantErr bool
	}{
		{in: "", want: StatusAll},
		{in: "all", want: StatusAll},
		{in: "Todos", want: StatusAll},
		{in: "present", want: StatusPresent},
		{in: "apenas presentes", want: StatusPresent},
		{in: "ABSENT", want: StatusAbsent},
		{in: "Apenas Ausentes", want: StatusAbsent},
		{in: "metade", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusFilter_Label(t *testing.T) {
	assert.Equal(t, "Todos", StatusAll.Label())
	assert.Equal(t, "Apenas Presentes", StatusPresent.Label())
	assert.Equal(t, "Apenas Ausentes", StatusAbsent.Label())
	assert.Equal(t, []StatusFilter{StatusAll, StatusPresent, StatusAbsent}, Statuses())
}

func TestFilter_Apply(t *testing.T) {
	reqs := []Requirement{
		{Theme: "A", Label: "a1", Present: 1},
		{Theme: "A", Label: "a2", Present: 0, Absent: 1},
		{Theme: "B", Label: "b1", Present: 3},
		{Theme: "C", Label: "c1", Present: 0, Absent: 2},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{Status: StatusAll}, want: []string{"a1", "a2", "b1", "c1"}},
		{name: "empty themes means all", filter: Filter{Themes: []string{}}, want: []string{"a1", "a2", "b1", "c1"}},
		{name: "present only", filter: Filter{Status: StatusPresent}, want: []string{"a1", "b1"}},
		{name: "absent only", filter: Filter{Status: StatusAbsent}, want: []string{"a2", "c1"}},
		{name: "themes", filter: Filter{Themes: []string{"A", "C"}}, want: []string{"a1", "a2", "c1"}},
		{name: "themes and status", filter: Filter{Themes: []string{"A"}, Status: StatusAbsent}, want: []string{"a2"}},
		{name: "unknown theme", filter: Filter{Themes: []string{"Z"}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, r := range tt.filter.Apply(reqs) {
				got = append(got, r.Label)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, reqs, 4, "input untouched")
}

func TestNewView(t *testing.T) {
	b := sampleBundle(t)
	v := NewView(b, Filter{Status: StatusPresent})

	assert.Same(t, b, v.Bundle)
	assert.Equal(t, []string{
		"Análise do Desafio Tecnológico",
		"Avaliação de Recursos e Metodologia",
		"Indicadores de Projeto Rotineiro",
	}, v.ThemeOptions)
	assert.Len(t, v.Requirements, 3)

	assert.Equal(t, []Slice{
		{Label: "Presente", Value: 3, Color: ColorPresent},
		{Label: "Ausente", Value: 2, Color: ColorAbsent},
	}, v.Donut)
	assert.Equal(t, 60.0, v.GaugeMax)
	require.Len(t, v.GaugeSteps, 3)
	assert.Equal(t, GaugeStep{Label: "Grau 1", Min: 0, Max: 20, Color: "#2ECC71"}, v.GaugeSteps[0])

	assert.Equal(t, 5, b.TotalRequirements, "filtering never touches the bundle")
	assert.Len(t, b.Requirements, 5)
}

func TestNewView_DefaultsStatus(t *testing.T) {
	v := NewView(sampleBundle(t), Filter{})
	assert.Equal(t, StatusAll, v.Filter.Status)
	assert.Len(t, v.Requirements, 5)
}

func TestDonutSlices_ClampsAbsent(t *testing.T) {
	slices := DonutSlices(&Bundle{RequirementsMet: 7, TotalRequirements: 3})
	assert.Equal(t, 7, slices[0].Value)
	assert.Equal(t, 0, slices[1].Value)
}

func TestGauge(t *testing.T) {
	assert.Equal(t, 100.0, GaugeMax(nil))
	assert.Equal(t, 250.0, GaugeMax([]Band{{Max: 100}, {Max: 250}, {Max: 80}}))

	bands := make([]Band, 6)
	steps := GaugeSteps(bands)
	assert.Len(t, steps, len(GaugeColors))
	assert.Equal(t, "#9B59B6", steps[3].Color)
}

func TestBreakdown(t *testing.T) {
	b := sampleBundle(t)

	breakdown := Breakdown(b.Requirements)
	require.Len(t, breakdown, 3)
	assert.Equal(t, ThemeBreakdown{Theme: "Análise do Desafio Tecnológico", Evaluated: 2, Met: 1, CompletionRate: 0.5}, breakdown[0])
	assert.Equal(t, 1.0, breakdown[1].CompletionRate)
	assert.Equal(t, 0.0, breakdown[2].CompletionRate)

	summary := Summarize(breakdown)
	assert.Equal(t, 3, summary.Themes)
	assert.InDelta(t, 0.5, summary.MeanCompletion, 1e-9)
	assert.InDelta(t, 0.5, summary.MedianCompletion, 1e-9)
	assert.Equal(t, 0.0, summary.MinCompletion)
	assert.Equal(t, 1.0, summary.MaxCompletion)

	assert.Equal(t, BreakdownSummary{}, Summarize(nil))
}

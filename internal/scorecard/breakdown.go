package scorecard

import (
	"github.com/montanaflynn/stats"
)

// ThemeBreakdown summarizes the evaluated requirements of one theme.
type ThemeBreakdown struct {
	Theme          string  `json:"theme"`
	Evaluated      int     `json:"evaluated"`
	Met            int     `json:"met"`
	CompletionRate float64 `json:"completion_rate"`
}

// BreakdownSummary describes the spread of completion rates across themes.
type BreakdownSummary struct {
	Themes           int     `json:"themes"`
	MeanCompletion   float64 `json:"mean_completion"`
	MedianCompletion float64 `json:"median_completion"`
	MinCompletion    float64 `json:"min_completion"`
	MaxCompletion    float64 `json:"max_completion"`
}

// Breakdown groups requirements by theme in first-seen order. Met counts
// requirements with at least one presence.
func Breakdown(reqs []Requirement) []ThemeBreakdown {
	index := make(map[string]int)
	out := make([]ThemeBreakdown, 0)
	for _, r := range reqs {
		i, ok := index[r.Theme]
		if !ok {
			i = len(out)
			index[r.Theme] = i
			out = append(out, ThemeBreakdown{Theme: r.Theme})
		}
		out[i].Evaluated++
		if r.Met() {
			out[i].Met++
		}
	}
	for i := range out {
		out[i].CompletionRate = float64(out[i].Met) / float64(out[i].Evaluated)
	}
	return out
}

// Summarize computes completion statistics. An empty breakdown yields a
// zero summary.
func Summarize(breakdown []ThemeBreakdown) BreakdownSummary {
	rates := make(stats.Float64Data, 0, len(breakdown))
	for _, b := range breakdown {
		rates = append(rates, b.CompletionRate)
	}

	summary := BreakdownSummary{Themes: len(rates)}
	if len(rates) == 0 {
		return summary
	}
	summary.MeanCompletion, _ = stats.Mean(rates)
	summary.MedianCompletion, _ = stats.Median(rates)
	summary.MinCompletion, _ = stats.Min(rates)
	summary.MaxCompletion, _ = stats.Max(rates)
	return summary
}

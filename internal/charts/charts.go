// Package charts renders the dashboard charts as inline SVG.
package charts

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strconv"
	"strings"

	"scorecard/internal/scorecard"
)

// Pastel is the qualitative palette cycled through by bar charts.
var Pastel = []string{
	"#66C5CC", "#F6CF71", "#F89C74", "#DCB0F2", "#87C55F", "#9EB9F3",
	"#FE88B1", "#C9DB74", "#8BE0A4", "#B497E7", "#B3B3B3",
}

// Text and stroke colors shared by every chart.
const (
	TextColor      = "#84BBD6"
	GaugeBarColor  = "darkblue"
	ThresholdColor = "red"
	EmptyMessage   = "Sem dados"
)

const (
	barWidth    = 520
	barRowH     = 44
	barLabelW   = 220
	donutSize   = 320
	gaugeWidth  = 360
	gaugeHeight = 230
)

// Bar is one horizontal bar.
type Bar struct {
	Label string
	Value float64
}

// ThemeBars turns theme totals into bars valued by their presence count.
func ThemeBars(totals []scorecard.ThemeTotal) []Bar {
	bars := make([]Bar, 0, len(totals))
	for _, t := range totals {
		bars = append(bars, Bar{Label: t.Theme, Value: float64(t.Present)})
	}
	return bars
}

// HorizontalBar draws one bar per item, each in the next Pastel color, with
// the value printed at the end of the bar.
func HorizontalBar(items []Bar) template.HTML {
	if len(items) == 0 {
		return empty(barWidth, 120)
	}

	maxVal := 0.0
	for _, it := range items {
		maxVal = math.Max(maxVal, it.Value)
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	height := len(items)*barRowH + 30
	plotW := float64(barWidth - barLabelW - 50)

	var sb strings.Builder
	sb.WriteString(svgHeader(barWidth, height, "Totais por tema"))
	for i, it := range items {
		y := float64(i*barRowH + 8)
		w := math.Max(it.Value, 0) / maxVal * plotW
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="12" fill="%s" text-anchor="end">%s</text>`,
			barLabelW-8, y+barRowH/2-2, TextColor, html.EscapeString(it.Label))
		fmt.Fprintf(&sb, `<rect x="%d" y="%.1f" width="%.1f" height="%d" fill="%s" rx="2"/>`,
			barLabelW, y, w, barRowH-14, Pastel[i%len(Pastel)])
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="12" fill="%s">%s</text>`,
			float64(barLabelW)+w+6, y+barRowH/2-2, TextColor, formatNumber(it.Value))
	}
	fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="11" fill="%s" text-anchor="middle">Pontuação</text>`,
		float64(barLabelW)+plotW/2, height-4, TextColor)
	sb.WriteString("</svg>")
	return template.HTML(sb.String())
}

// Donut draws a ring with a hole of half the radius. Each slice is labelled
// with its name and share.
func Donut(slices []scorecard.Slice) template.HTML {
	total := 0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total == 0 {
		return empty(donutSize, donutSize)
	}

	const (
		outer = 130.0
		ring  = outer / 2
		mid   = outer - ring/2
	)
	c := float64(donutSize) / 2
	circumference := 2 * math.Pi * mid

	var sb strings.Builder
	sb.WriteString(svgHeader(donutSize, donutSize, "Proporção de requisitos"))

	offset := 0.0
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		frac := float64(s.Value) / float64(total)
		length := frac * circumference
		fmt.Fprintf(&sb,
			`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="%.1f" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f" transform="rotate(-90 %.1f %.1f)"><title>%s: %d</title></circle>`,
			c, c, mid, s.Color, ring, length, circumference-length, -offset, c, c,
			html.EscapeString(s.Label), s.Value)

		angle := (offset+length/2)/circumference*2*math.Pi - math.Pi/2
		lx := c + mid*math.Cos(angle)
		ly := c + mid*math.Sin(angle)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="12" fill="#152D51" text-anchor="middle">%s %s%%</text>`,
			lx, ly+4, html.EscapeString(s.Label), strconv.FormatFloat(frac*100, 'f', 1, 64))
		offset += length
	}
	sb.WriteString("</svg>")
	return template.HTML(sb.String())
}

// Gauge draws a half-circle axis from 0 to max with the band steps painted
// underneath, the score as a bar and a threshold line at the score.
func Gauge(value, max float64, steps []scorecard.GaugeStep) template.HTML {
	if max <= 0 {
		max = 100
	}
	clamped := math.Min(math.Max(value, 0), max)

	const radius = 140.0
	cx, cy := float64(gaugeWidth)/2, float64(gaugeHeight)-50

	var sb strings.Builder
	sb.WriteString(svgHeader(gaugeWidth, gaugeHeight, "Medidor de classificação"))
	fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="gray" stroke-width="46"/>`, arcPath(cx, cy, radius, 0, max, max))
	fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="#152D51" stroke-width="42"/>`, arcPath(cx, cy, radius, 0, max, max))

	for _, s := range steps {
		lo := math.Min(math.Max(s.Min, 0), max)
		hi := math.Min(math.Max(s.Max, 0), max)
		if hi <= lo {
			continue
		}
		fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="42"><title>%s</title></path>`,
			arcPath(cx, cy, radius, lo, hi, max), s.Color, html.EscapeString(s.Label))
	}

	if clamped > 0 {
		fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="14"/>`,
			arcPath(cx, cy, radius, 0, clamped, max), GaugeBarColor)
	}

	// threshold marker spans three quarters of the band thickness
	ix, iy := polar(cx, cy, radius-16, clamped, max)
	ox, oy := polar(cx, cy, radius+16, clamped, max)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="4"/>`,
		ix, iy, ox, oy, ThresholdColor)

	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="12" fill="%s" text-anchor="middle">0</text>`,
		cx-radius, cy+20, TextColor)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="12" fill="%s" text-anchor="middle">%s</text>`,
		cx+radius, cy+20, TextColor, formatNumber(max))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="34" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cx, cy+8, TextColor, formatNumber(value))
	sb.WriteString("</svg>")
	return template.HTML(sb.String())
}

// polar maps v on a 0..max half circle, 0 on the left and max on the right.
func polar(cx, cy, r, v, max float64) (float64, float64) {
	theta := math.Pi - v/max*math.Pi
	return cx + r*math.Cos(theta), cy - r*math.Sin(theta)
}

func arcPath(cx, cy, r, from, to, max float64) string {
	x1, y1 := polar(cx, cy, r, from, max)
	x2, y2 := polar(cx, cy, r, to, max)
	return fmt.Sprintf("M%.2f,%.2f A%.1f,%.1f 0 0,1 %.2f,%.2f", x1, y1, r, r, x2, y2)
}

func svgHeader(width, height int, title string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="100%%" role="img" aria-label="%s" font-family="sans-serif">`,
		width, height, html.EscapeString(title))
}

func empty(width, height int) template.HTML {
	return template.HTML(svgHeader(width, height, EmptyMessage) +
		fmt.Sprintf(`<text x="%d" y="%d" font-size="14" fill="%s" text-anchor="middle">%s</text></svg>`,
			width/2, height/2, TextColor, EmptyMessage))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

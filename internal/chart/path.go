// Package chart turns small labelled series into the SVG paths drawn by the
// dashboard's line/area chart.
package chart

import (
	"math"
	"strconv"
	"strings"

	"turnon/internal/models"
)

// Canvas geometry shared with the dashboard's SVG viewBox.
const (
	Width     = 600.0
	Baseline  = 180.0
	Amplitude = 140.0
)

const highlightIndex = 3

type point struct {
	x, y float64
}

// Layout places every value on the canvas: x evenly spaced across Width, y
// scaled against the series maximum and measured up from Baseline. Negative
// values are clamped to zero, so no point falls below Baseline.
func Layout(series []models.ChartPoint) []models.PlotPoint {
	if len(series) == 0 {
		return []models.PlotPoint{}
	}
	maxValue := 0.0
	for _, p := range series {
		maxValue = math.Max(maxValue, p.Value)
	}
	step := 0.0
	if len(series) > 1 {
		step = Width / float64(len(series)-1)
	}
	out := make([]models.PlotPoint, len(series))
	for i, p := range series {
		y := Baseline
		if maxValue > 0 {
			y = Baseline - math.Max(p.Value, 0)/maxValue*Amplitude
		}
		out[i] = models.PlotPoint{Label: p.Label, Value: p.Value, X: float64(i) * step, Y: y}
	}
	return out
}

// SmoothPaths builds the line and area paths through series using
// Catmull-Rom control points converted to cubic Béziers.
func SmoothPaths(series []models.ChartPoint) models.ChartPaths {
	plotted := Layout(series)
	paths := models.ChartPaths{Highlight: HighlightIndex(len(plotted)), Points: plotted}
	if len(plotted) == 0 {
		return paths
	}
	pts := make([]point, len(plotted))
	for i, p := range plotted {
		pts[i] = point{p.X, p.Y}
	}
	paths.Line = linePath(pts)
	paths.Area = areaPath(pts, paths.Line)
	return paths
}

// HighlightIndex is the point carrying the floating annotation: the fourth,
// or the last when there are fewer. -1 for an empty series.
func HighlightIndex(n int) int {
	if n <= 0 {
		return -1
	}
	if n <= highlightIndex {
		return n - 1
	}
	return highlightIndex
}

func linePath(pts []point) string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, pts[0])
	for i := 0; i < len(pts)-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]

		c1 := point{p1.x + (p2.x-p0.x)/6, p1.y + (p2.y-p0.y)/6}
		c2 := point{p2.x - (p3.x-p1.x)/6, p2.y - (p3.y-p1.y)/6}

		b.WriteString(" C ")
		writePoint(&b, c1)
		b.WriteString(", ")
		writePoint(&b, c2)
		b.WriteString(", ")
		writePoint(&b, p2)
	}
	return b.String()
}

func areaPath(pts []point, line string) string {
	first := pts[0]
	last := pts[len(pts)-1]
	if len(pts) == 1 {
		var b strings.Builder
		b.WriteString("M ")
		writePoint(&b, point{first.x, Baseline})
		b.WriteString(" L ")
		writePoint(&b, first)
		b.WriteString(" L ")
		writePoint(&b, point{first.x, Baseline})
		b.WriteString(" Z")
		return b.String()
	}
	var b strings.Builder
	b.WriteString(line)
	b.WriteString(" L ")
	writePoint(&b, point{last.x, Baseline})
	b.WriteString(" L ")
	writePoint(&b, point{first.x, Baseline})
	b.WriteString(" Z")
	return b.String()
}

func writePoint(b *strings.Builder, p point) {
	b.WriteString(formatCoord(p.x))
	b.WriteByte(' ')
	b.WriteString(formatCoord(p.y))
}

func formatCoord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

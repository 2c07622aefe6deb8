package charts

import (
	"errors"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"mediastats/pkg/models"
)

var (
	skyBlue = drawing.ColorFromHex("87ceeb")
	orange  = drawing.ColorFromHex("ffa500")
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("charts: no data")

// Bars draws a vertical bar chart, one bar per ranking entry, in ranking order.
// Bar colors alternate sky blue and orange.
func Bars(path, title, xLabel, yLabel string, data models.Ranking) error {
	if len(data) == 0 {
		return ErrNoData
	}

	palette := []drawing.Color{skyBlue, orange}
	bars := make([]chart.Value, 0, len(data))
	maxCount := 0
	for i, c := range data {
		col := palette[i%len(palette)]
		bars = append(bars, chart.Value{
			Label: c.Name,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	graph := chart.BarChart{
		Title:  title,
		Width:  Width,
		Height: Height,
		DPI:    DPI,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 50, Right: 20, Bottom: 60},
		},
		BarWidth: 80,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.05},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars:     bars,
		Elements: []chart.Renderable{axisLabels(xLabel, yLabel)},
	}

	return writePNG(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}

// axisLabels draws the x label under the plot and the y label rotated on the left edge.
func axisLabels(xLabel, yLabel string) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		style := chart.Style{FontSize: 10, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)

		if xLabel != "" {
			tb := r.MeasureText(xLabel)
			r.Text(xLabel, (Width-tb.Width())/2, Height-12)
		}
		if yLabel != "" {
			tb := r.MeasureText(yLabel)
			r.SetTextRotation(chart.DegreesToRadians(270))
			r.Text(yLabel, 18, (Height+tb.Width())/2)
			r.ClearTextRotation()
		}
	}
}

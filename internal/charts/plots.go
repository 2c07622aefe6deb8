package charts

import (
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"mediastats/pkg/models"
)

var (
	tabBlue = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	teal    = color.RGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xff}
	red     = color.RGBA{R: 0xff, A: 0xff}
)

// Histogram draws values into bins equal-width bins spanning their observed
// range, bars outlined in black. With no values it still writes the empty axes.
func Histogram(path, title, xLabel, yLabel string, values []float64, bins int) error {
	p := newPlot(title, xLabel, yLabel)

	if len(values) > 0 {
		h, err := plotter.NewHist(plotter.Values(values), bins)
		if err != nil {
			return err
		}
		h.FillColor = tabBlue
		h.LineStyle.Color = color.Black
		h.LineStyle.Width = vg.Points(0.6)
		p.Add(h)
	}

	return savePlot(p, path)
}

// Trend draws points as a red scatter series joined by a black line.
// xs must already be in ascending order.
func Trend(path, title, xLabel, yLabel string, xs, ys []float64) error {
	p := newPlot(title, xLabel, yLabel)

	if len(xs) > 0 {
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = xs[i]
			pts[i].Y = ys[i]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Color = color.Black
		line.LineStyle.Width = vg.Points(1)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = red
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(2.5)

		p.Add(line, scatter)
	}

	return savePlot(p, path)
}

// HorizontalBars draws one horizontal bar per ranking entry with the first
// entry at the top. colors cycles over the bars; nil means teal.
func HorizontalBars(path, title, xLabel string, data models.Ranking, colors []color.Color) error {
	if len(data) == 0 {
		return ErrNoData
	}
	if len(colors) == 0 {
		colors = []color.Color{teal}
	}

	p := newPlot(title, xLabel, "")

	n := len(data)
	names := make([]string, n)
	for i, c := range data {
		pos := n - 1 - i
		names[pos] = c.Name

		b, err := plotter.NewBarChart(plotter.Values{float64(c.Count)}, vg.Points(14))
		if err != nil {
			return err
		}
		b.Horizontal = true
		b.XMin = float64(pos)
		b.Color = colors[i%len(colors)]
		b.LineStyle.Width = 0
		p.Add(b)
	}
	p.NominalY(names...)
	p.X.Min = 0

	return savePlot(p, path)
}

// Viridis samples n colors evenly from the viridis colormap.
func Viridis(n int) []color.Color {
	stops := []color.RGBA{
		rgb(0x44, 0x01, 0x54), rgb(0x47, 0x2c, 0x7a), rgb(0x3b, 0x51, 0x8b),
		rgb(0x2c, 0x71, 0x8e), rgb(0x21, 0x90, 0x8d), rgb(0x27, 0xad, 0x81),
		rgb(0x5c, 0xc8, 0x63), rgb(0xaa, 0xdc, 0x32), rgb(0xfd, 0xe7, 0x25),
	}
	if n <= 0 {
		return nil
	}

	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		pos := t * float64(len(stops)-1)
		lo := int(pos)
		if lo >= len(stops)-1 {
			out[i] = stops[len(stops)-1]
			continue
		}
		f := pos - float64(lo)
		a, b := stops[lo], stops[lo+1]
		out[i] = color.RGBA{
			R: lerp(a.R, b.R, f),
			G: lerp(a.G, b.G, f),
			B: lerp(a.B, b.B, f),
			A: 0xff,
		}
	}
	return out
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Points(6)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func savePlot(p *plot.Plot, path string) error {
	wt, err := p.WriterTo(vg.Length(Width)*vg.Inch/vg.Length(DPI), vg.Length(Height)*vg.Inch/vg.Length(DPI), "png")
	if err != nil {
		return err
	}
	return writePNG(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

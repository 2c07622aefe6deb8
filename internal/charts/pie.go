package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/fogleman/gg"

	"mediastats/pkg/models"
)

// tab10 is the default categorical cycle.
var tab10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const pieStartDegrees = 90.0

// PieSlice is a computed wedge, angles in degrees measured counter-clockwise
// from the positive x axis.
type PieSlice struct {
	Label   string
	Percent float64
	Start   float64
	End     float64
}

// PieSlices lays out wedges for data, the first wedge starting at 90 degrees
// and proceeding counter-clockwise.
func PieSlices(data models.Ranking) []PieSlice {
	total := 0
	for _, c := range data {
		total += c.Count
	}
	if total == 0 {
		return nil
	}

	out := make([]PieSlice, 0, len(data))
	angle := pieStartDegrees
	for _, c := range data {
		frac := float64(c.Count) / float64(total)
		sweep := frac * 360
		out = append(out, PieSlice{
			Label:   c.Name,
			Percent: frac * 100,
			Start:   angle,
			End:     angle + sweep,
		})
		angle += sweep
	}
	return out
}

// PercentLabel formats a wedge share with one decimal place.
func PercentLabel(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Pie draws a pie chart with percentage labels inside each wedge and the
// category name just outside it.
func Pie(path, title string, data models.Ranking) error {
	slices := PieSlices(data)
	if len(slices) == 0 {
		return ErrNoData
	}

	titleFace, err := fontFace(14)
	if err != nil {
		return err
	}
	labelFace, err := fontFace(10)
	if err != nil {
		return err
	}

	dc := gg.NewContext(Width, Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(titleFace)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, Width/2, 22, 0.5, 0.5)

	cx, cy := float64(Width)/2, float64(Height)/2+15
	radius := 140.0

	for i, s := range slices {
		dc.SetHexColor(tab10[i%len(tab10)])
		dc.MoveTo(cx, cy)
		steps := int(math.Max(2, math.Ceil(s.End-s.Start)))
		for k := 0; k <= steps; k++ {
			a := gg.Radians(s.Start + (s.End-s.Start)*float64(k)/float64(steps))
			dc.LineTo(cx+radius*math.Cos(a), cy-radius*math.Sin(a))
		}
		dc.ClosePath()
		dc.Fill()
	}

	dc.SetFontFace(labelFace)
	for _, s := range slices {
		mid := gg.Radians((s.Start + s.End) / 2)
		cos, sin := math.Cos(mid), math.Sin(mid)

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(PercentLabel(s.Percent), cx+0.6*radius*cos, cy-0.6*radius*sin, 0.5, 0.5)

		ax := 0.5
		if cos > 0.1 {
			ax = 0
		} else if cos < -0.1 {
			ax = 1
		}
		dc.DrawStringAnchored(s.Label, cx+1.1*radius*cos, cy-1.1*radius*sin, ax, 0.5)
	}

	return writePNG(path, func(w io.Writer) error {
		return dc.EncodePNG(w)
	})
}

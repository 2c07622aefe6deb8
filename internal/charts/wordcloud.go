package charts

import (
	"image"
	"image/color"
	"io"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Cloud canvas size and limits.
const (
	CloudWidth  = 600
	CloudHeight = 300

	cloudMaxWords   = 200
	cloudMaxFont    = 72.0
	cloudMinFont    = 6.0
	cloudFontStep   = 2.0
	cloudRelScaling = 0.5
	cloudMargin     = 2.0
	cloudSeed       = 42
)

var wordPattern = regexp.MustCompile(`\w[\w']+`)

// WordFreq is a word and how often it occurs.
type WordFreq struct {
	Word  string
	Count int
}

// WordFrequencies tokenizes text, drops stopwords and pure numbers, folds
// case (keeping the most common spelling) and returns words by descending
// count; ties keep first appearance.
func WordFrequencies(text string) []WordFreq {
	type entry struct {
		first    int
		total    int
		variants map[string]int
	}

	byKey := make(map[string]*entry)
	order := 0
	for _, w := range wordPattern.FindAllString(text, -1) {
		if strings.HasSuffix(strings.ToLower(w), "'s") {
			w = w[:len(w)-2]
		}
		if w == "" || isNumber(w) || IsStopword(w) {
			continue
		}
		key := strings.ToLower(w)
		e, ok := byKey[key]
		if !ok {
			e = &entry{first: order, variants: make(map[string]int)}
			byKey[key] = e
			order++
		}
		e.total++
		e.variants[w]++
	}

	type ranked struct {
		WordFreq
		first int
	}
	list := make([]ranked, 0, len(byKey))
	for _, e := range byKey {
		best, bestN := "", -1
		for v, n := range e.variants {
			if n > bestN || (n == bestN && v < best) {
				best, bestN = v, n
			}
		}
		list = append(list, ranked{WordFreq: WordFreq{Word: best, Count: e.total}, first: e.first})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].first < list[j].first
	})

	out := make([]WordFreq, len(list))
	for i, r := range list {
		out[i] = r.WordFreq
	}
	return out
}

func isNumber(w string) bool {
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PlacedWord is a word positioned on the cloud canvas; X, Y is its top-left corner.
type PlacedWord struct {
	Word  string
	Size  float64
	X, Y  float64
	W, H  float64
	Color color.Color
}

type rect struct{ x0, y0, x1, y1 float64 }

func (a rect) overlaps(b rect) bool {
	return a.x0 < b.x1 && b.x0 < a.x1 && a.y0 < b.y1 && b.y0 < a.y1
}

type faceCache struct {
	faces map[float64]font.Face
}

func (fc *faceCache) get(size float64) (font.Face, error) {
	if f, ok := fc.faces[size]; ok {
		return f, nil
	}
	f, err := fontFace(size)
	if err != nil {
		return nil, err
	}
	fc.faces[size] = f
	return f, nil
}

// LayoutCloud positions words on a width x height canvas along an
// Archimedean spiral from the center. Font size follows frequency; a word
// that does not fit is retried smaller and dropped once below the minimum size.
// The layout is deterministic.
func LayoutCloud(words []WordFreq, width, height int) ([]PlacedWord, error) {
	if len(words) > cloudMaxWords {
		words = words[:cloudMaxWords]
	}
	if len(words) == 0 {
		return nil, ErrNoData
	}

	rng := rand.New(rand.NewSource(cloudSeed))
	colors := Viridis(32)
	faces := &faceCache{faces: make(map[float64]font.Face)}
	dc := gg.NewContext(1, 1)

	maxCount := float64(words[0].Count)
	size := math.Min(cloudMaxFont, float64(height)*0.4)
	lastFreq := 1.0

	var placed []PlacedWord
	var boxes []rect
	for _, wf := range words {
		freq := float64(wf.Count) / maxCount
		if cloudRelScaling != 0 {
			size = math.Round((cloudRelScaling*(freq/lastFreq) + (1 - cloudRelScaling)) * size)
		}
		lastFreq = freq

		for size >= cloudMinFont {
			face, err := faces.get(size)
			if err != nil {
				return nil, err
			}
			dc.SetFontFace(face)
			w, h := dc.MeasureString(wf.Word)
			w += 2 * cloudMargin
			h += 2 * cloudMargin

			if x, y, ok := findSpot(boxes, w, h, float64(width), float64(height), rng); ok {
				boxes = append(boxes, rect{x, y, x + w, y + h})
				placed = append(placed, PlacedWord{
					Word:  wf.Word,
					Size:  size,
					X:     x + cloudMargin,
					Y:     y + cloudMargin,
					W:     w - 2*cloudMargin,
					H:     h - 2*cloudMargin,
					Color: colors[rng.Intn(len(colors))],
				})
				break
			}
			size -= cloudFontStep
		}
		if size < cloudMinFont {
			break
		}
	}

	if len(placed) == 0 {
		return nil, ErrNoData
	}
	return placed, nil
}

func findSpot(boxes []rect, w, h, width, height float64, rng *rand.Rand) (float64, float64, bool) {
	if w > width || h > height {
		return 0, 0, false
	}
	cx, cy := width/2, height/2
	start := rng.Float64() * 2 * math.Pi
	maxR := math.Hypot(width, height) / 2

	for t := 0.0; ; t += 0.1 {
		r := 1.5 * t
		if r > maxR {
			return 0, 0, false
		}
		a := start + t
		x := cx + r*math.Cos(a) - w/2
		y := cy + r*math.Sin(a)*height/width - h/2
		if x < 0 || y < 0 || x+w > width || y+h > height {
			continue
		}
		candidate := rect{x, y, x + w, y + h}
		free := true
		for _, b := range boxes {
			if candidate.overlaps(b) {
				free = false
				break
			}
		}
		if free {
			return x, y, true
		}
	}
}

// RenderCloud draws placed words on a black canvas.
func RenderCloud(words []PlacedWord, width, height int) (image.Image, error) {
	faces := &faceCache{faces: make(map[float64]font.Face)}
	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	for _, w := range words {
		face, err := faces.get(w.Size)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(w.Color)
		dc.DrawStringAnchored(w.Word, w.X, w.Y, 0, 1)
	}
	return dc.Image(), nil
}

// WordCloud renders text as a 600x300 word cloud under a title, without axes.
func WordCloud(path, title, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNoData
	}

	placed, err := LayoutCloud(WordFrequencies(text), CloudWidth, CloudHeight)
	if err != nil {
		return err
	}
	cloud, err := RenderCloud(placed, CloudWidth, CloudHeight)
	if err != nil {
		return err
	}

	titleFace, err := fontFace(14)
	if err != nil {
		return err
	}

	dc := gg.NewContext(Width, Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(titleFace)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(title, Width/2, 28, 0.5, 0.5)
	dc.DrawImage(cloud, (Width-CloudWidth)/2, Height-CloudHeight-30)

	return writePNG(path, func(w io.Writer) error {
		return dc.EncodePNG(w)
	})
}

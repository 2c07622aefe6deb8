// Package charts renders the catalog report images as PNG files.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
)

// Figure size in pixels (6x4 inches at 100 DPI).
const (
	Width  = 600
	Height = 400
	DPI    = 100.0
)

// writePNG writes through a temp file in the target directory and renames
// it into place. A failed render leaves nothing at path.
func writePNG(path string, render func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = render(tmp); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}

var (
	fontOnce sync.Once
	baseFont *truetype.Font
	fontErr  error
)

// defaultFont is the TrueType face bundled with go-chart.
func defaultFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		baseFont, fontErr = chart.GetDefaultFont()
	})
	return baseFont, fontErr
}

func fontFace(points float64) (font.Face, error) {
	f, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, DPI: 72}), nil
}

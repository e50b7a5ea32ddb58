// Package fonts provides the embedded typefaces used to draw cards.
//
// The Go font family is compiled into the binary (golang.org/x/image/font/gofont),
// so card text renders identically on every machine without system fonts.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a typeface.
type Weight int

// Weights.
const (
	Regular Weight = iota
	Bold
)

var (
	parsed    map[Weight]*truetype.Font
	parseErr  error
	parseOnce sync.Once
)

func load() error {
	parseOnce.Do(func() {
		parsed = make(map[Weight]*truetype.Font, 2)
		for w, ttf := range map[Weight][]byte{Regular: goregular.TTF, Bold: gobold.TTF} {
			f, err := truetype.Parse(ttf)
			if err != nil {
				parseErr = fmt.Errorf("parse embedded font: %w", err)
				return
			}
			parsed[w] = f
		}
	})
	return parseErr
}

// Face returns a new face of weight at size points (72 dpi, so one point is
// one pixel). Faces cache glyphs and are not safe for concurrent use.
func Face(weight Weight, size float64) (font.Face, error) {
	if err := load(); err != nil {
		return nil, err
	}
	f, ok := parsed[weight]
	if !ok {
		f = parsed[Regular]
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

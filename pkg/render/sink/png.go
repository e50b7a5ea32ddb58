package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/cardsheet/pkg/compose"
	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

const mmPerInch = 25.4

// DefaultPreviewDPI is the resolution of page previews when none is given.
const DefaultPreviewDPI = 96

// RenderPagePNG draws a preview of a single page at dpi and returns it as
// PNG. A dpi of zero or less uses [DefaultPreviewDPI].
func RenderPagePNG(page compose.Page, dpi float64) ([]byte, error) {
	img, err := RenderPage(page, dpi)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page.Number, err)
	}
	return buf.Bytes(), nil
}

// RenderPage draws a preview of a single page at dpi.
func RenderPage(page compose.Page, dpi float64) (image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultPreviewDPI
	}
	if page.Width <= 0 || page.Height <= 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "page %d has no size", page.Number)
	}
	px := func(mm float64) float64 { return mm / mmPerInch * dpi }

	w, h := int(math.Round(px(page.Width))), int(math.Round(px(page.Height)))
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	for _, p := range page.Images {
		if p.Source.Image == nil {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "card %q on page %d has no image", p.Source.ID, page.Number)
		}
		pw, ph := int(math.Round(px(p.Width))), int(math.Round(px(p.Height)))
		if pw < 1 || ph < 1 {
			continue
		}
		fitted := imaging.Resize(p.Source.Image, pw, ph, imaging.Lanczos)
		dc.DrawImage(fitted, int(math.Round(px(p.X))), int(math.Round(px(p.Y))))
	}

	if len(page.CropMarks) > 0 {
		dc.SetColor(color.Black)
		dc.SetLineWidth(math.Max(1, px(CropMarkWidth)))
		for _, m := range page.CropMarks {
			dc.DrawLine(px(m.X1), px(m.Y1), px(m.X2), px(m.Y2))
			dc.Stroke()
		}
	}
	return dc.Image(), nil
}

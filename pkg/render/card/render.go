package card

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/fonts"
	"github.com/matzehuels/cardsheet/pkg/forms"
)

// Palette.
var (
	colorInk       = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorMuted     = color.NRGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}
	colorAccent    = color.NRGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	colorBlood     = color.NRGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
	colorPaper     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorPlacehold = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

// Geometry in 96-dpi pixels.
const (
	headerHeight = 56.0
	photoTop     = 60.0
	photoWidth   = 70.0
	photoHeight  = 85.0
	nameY        = 166.0
	compactY     = 184.0
	detailsTop   = 198.0
	detailStep   = 11.0
	margin       = 10.0
	qrSize       = 38.0
)

// detailFields are printed as "Label :- value" rows, in this order.
var detailFields = []forms.FieldKey{
	forms.FieldFatherName,
	forms.FieldMotherName,
	forms.FieldAddress,
	forms.FieldDateOfBirth,
	forms.FieldMobileNumber,
	forms.FieldAadhaarNumber,
	forms.FieldEmail,
}

// Renderer draws cards with gg.
type Renderer struct {
	images ImageSource
	qr     bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithoutQR omits the QR code.
func WithoutQR() Option {
	return func(r *Renderer) { r.qr = false }
}

// NewRenderer returns a Renderer that loads photos and backgrounds from
// images.
func NewRenderer(images ImageSource, opts ...Option) *Renderer {
	r := &Renderer{images: images, qr: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Rasterizer = (*Renderer)(nil)

// canvas wraps a gg context with the card scale.
type canvas struct {
	dc    *gg.Context
	scale float64
	faces map[faceKey]font.Face
}

type faceKey struct {
	weight fonts.Weight
	size   float64
}

func (c *canvas) px(v float64) float64 { return v * c.scale }

func (c *canvas) font(weight fonts.Weight, size float64) error {
	k := faceKey{weight, size}
	face, ok := c.faces[k]
	if !ok {
		var err error
		face, err = fonts.Face(weight, c.px(size))
		if err != nil {
			return err
		}
		c.faces[k] = face
	}
	c.dc.SetFontFace(face)
	return nil
}

// text draws s anchored at (x, y) in base pixels, shrinking it to fit
// maxWidth when given.
func (c *canvas) text(s string, x, y, ax float64, maxWidth float64) {
	if maxWidth > 0 {
		s = truncate(c.dc, s, c.px(maxWidth))
	}
	c.dc.DrawStringAnchored(s, c.px(x), c.px(y), ax, 0.5)
}

func truncate(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 {
		r = r[:len(r)-1]
		if w, _ := dc.MeasureString(string(r) + "…"); w <= width {
			return string(r) + "…"
		}
	}
	return string(r)
}

// Rasterize draws c at scale. A photo that cannot be loaded is replaced by a
// placeholder; a background that cannot be loaded fails the card.
func (r *Renderer) Rasterize(ctx context.Context, c Card, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "scale must be positive, got %v", scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := Size(scale)
	cv := &canvas{dc: gg.NewContext(w, h), scale: scale, faces: make(map[faceKey]font.Face)}

	if err := r.drawBackground(ctx, cv, c, w, h); err != nil {
		return nil, err
	}
	steps := []func(*canvas, Card) error{
		r.drawHeader,
		r.drawSides,
		r.drawName,
		r.drawCompactRow,
		r.drawDetails,
		r.drawFooter,
	}
	for _, step := range steps {
		if err := step(cv, c); err != nil {
			return nil, err
		}
	}
	if c.Has(forms.FieldPhoto) {
		r.drawPhoto(ctx, cv, c)
	}
	if r.qr && c.ID != "" {
		if err := r.drawQR(cv, c.ID); err != nil {
			return nil, err
		}
	}
	return cv.dc.Image(), nil
}

func (r *Renderer) drawBackground(ctx context.Context, cv *canvas, c Card, w, h int) error {
	if c.BackgroundURL == "" {
		cv.dc.SetColor(colorPaper)
		cv.dc.Clear()
		cv.dc.SetColor(colorAccent)
		cv.dc.DrawRectangle(0, 0, float64(w), cv.px(headerHeight))
		cv.dc.Fill()
		return nil
	}
	if r.images == nil {
		return apperr.New(apperr.ErrCodeInternal, "no image source for background")
	}
	bg, err := r.images.Fetch(ctx, c.BackgroundURL)
	if err != nil {
		return fmt.Errorf("load background: %w", err)
	}
	cv.dc.DrawImage(imaging.Fill(bg, w, h, imaging.Center, imaging.Lanczos), 0, 0)
	return nil
}

func (r *Renderer) drawHeader(cv *canvas, c Card) error {
	if c.BackgroundURL != "" {
		return nil
	}
	cv.dc.SetColor(colorPaper)
	if err := cv.font(fonts.Bold, 11); err != nil {
		return err
	}
	cv.text(strings.ToUpper(c.SchoolName), BaseWidth/2, 22, 0.5, BaseWidth-2*margin)
	if c.SchoolAddress != "" {
		if err := cv.font(fonts.Regular, 7); err != nil {
			return err
		}
		cv.text(c.SchoolAddress, BaseWidth/2, 39, 0.5, BaseWidth-2*margin)
	}
	return nil
}

func (r *Renderer) drawPhoto(ctx context.Context, cv *canvas, c Card) {
	x := (BaseWidth - photoWidth) / 2
	pw, ph := int(cv.px(photoWidth)), int(cv.px(photoHeight))

	var photo image.Image
	if url := forms.PhotoURL(c.Data); url != "" && r.images != nil {
		if img, err := r.images.Fetch(ctx, url); err == nil {
			photo = imaging.Fill(img, pw, ph, imaging.Center, imaging.Lanczos)
		}
	}

	if photo != nil {
		cv.dc.DrawImage(photo, int(cv.px(x)), int(cv.px(photoTop)))
	} else {
		cv.dc.SetColor(colorPlacehold)
		cv.dc.DrawRectangle(cv.px(x), cv.px(photoTop), float64(pw), float64(ph))
		cv.dc.Fill()
		cv.dc.SetColor(colorMuted)
		if cv.font(fonts.Regular, 9) == nil {
			cv.text("Photo", BaseWidth/2, photoTop+photoHeight/2, 0.5, 0)
		}
	}

	cv.dc.SetColor(colorAccent)
	cv.dc.SetLineWidth(cv.px(1.5))
	cv.dc.DrawRectangle(cv.px(x), cv.px(photoTop), float64(pw), float64(ph))
	cv.dc.Stroke()
}

func (r *Renderer) drawSides(cv *canvas, c Card) error {
	midY := photoTop + photoHeight/2
	if err := cv.font(fonts.Bold, 8); err != nil {
		return err
	}
	sideWidth := (BaseWidth-photoWidth)/2 - margin - 4

	if stream := c.Value(forms.FieldStream); stream != "" {
		cv.dc.SetColor(colorAccent)
		cv.text(strings.ToUpper(stream), margin, midY, 0, sideWidth)
	}

	right := BaseWidth - margin
	if blood := c.Value(forms.FieldBloodGroup); blood != "" {
		cx, cy, rad := right-11, midY-12, 11.0
		cv.dc.SetColor(colorBlood)
		cv.dc.DrawCircle(cv.px(cx), cv.px(cy), cv.px(rad))
		cv.dc.Fill()
		cv.dc.SetColor(colorPaper)
		cv.text(blood, cx, cy, 0.5, 2*rad-2)
	}
	if session := c.Value(forms.FieldSession); session != "" {
		cv.dc.SetColor(colorInk)
		if err := cv.font(fonts.Regular, 7); err != nil {
			return err
		}
		cv.text(session, right, midY+14, 1, sideWidth)
	}
	return nil
}

func (r *Renderer) drawName(cv *canvas, c Card) error {
	if !c.Has(forms.FieldName) {
		return nil
	}
	name := c.Value(forms.FieldName)
	if name == "" {
		name = "Student Name"
	}
	if err := cv.font(fonts.Bold, 13); err != nil {
		return err
	}
	cv.dc.SetColor(colorAccent)
	cv.text(strings.ToUpper(name), BaseWidth/2, nameY, 0.5, BaseWidth-2*margin)
	return nil
}

func (r *Renderer) drawCompactRow(cv *canvas, c Card) error {
	var parts []string
	if class := c.Value(forms.FieldClass); class != "" {
		if section := forms.DisplayValue(c.Data, forms.FieldSection); section != "" {
			class += "/" + section
		}
		parts = append(parts, "Class: "+class)
	}
	if roll := c.Value(forms.FieldRollNumber); roll != "" {
		parts = append(parts, "Roll: "+roll)
	}
	if adm := c.Value(forms.FieldAdmissionNumber); adm != "" {
		parts = append(parts, "Adm.: "+adm)
	}
	if len(parts) == 0 {
		return nil
	}
	if err := cv.font(fonts.Bold, 8); err != nil {
		return err
	}
	cv.dc.SetColor(colorInk)
	cv.text(strings.Join(parts, "   "), BaseWidth/2, compactY, 0.5, BaseWidth-2*margin)
	return nil
}

func (r *Renderer) drawDetails(cv *canvas, c Card) error {
	const labelWidth = 62.0
	valueX := margin + labelWidth
	valueWidth := BaseWidth - valueX - margin - qrSize/2
	limit := BaseHeight - margin - 4

	y := detailsTop
	for _, key := range detailFields {
		value := c.Value(key)
		if value == "" {
			continue
		}
		if y > limit {
			break
		}

		if err := cv.font(fonts.Bold, 7); err != nil {
			return err
		}
		cv.dc.SetColor(colorMuted)
		cv.text(forms.DetailLabel(key), margin, y, 0, labelWidth-10)
		cv.text(":-", valueX-8, y, 0, 0)

		if err := cv.font(fonts.Regular, 7); err != nil {
			return err
		}
		cv.dc.SetColor(colorInk)
		lines := []string{value}
		if key == forms.FieldAddress {
			lines = cv.dc.WordWrap(value, cv.px(valueWidth))
			if len(lines) > 2 {
				lines = append(lines[:1], strings.Join(lines[1:], " "))
			}
		}
		for _, line := range lines {
			cv.text(line, valueX, y, 0, valueWidth)
			y += detailStep
		}
	}
	return nil
}

func (r *Renderer) drawFooter(cv *canvas, c Card) error {
	if c.BackgroundURL != "" {
		return nil
	}
	cv.dc.SetColor(colorAccent)
	cv.dc.DrawRectangle(0, cv.px(BaseHeight-4), cv.px(BaseWidth), cv.px(4))
	cv.dc.Fill()
	return nil
}

func (r *Renderer) drawQR(cv *canvas, id string) error {
	q, err := qrcode.New(id, qrcode.Medium)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "encode QR code")
	}
	q.DisableBorder = true
	size := int(cv.px(qrSize))
	img := q.Image(size)

	x := int(cv.px(BaseWidth - margin - qrSize))
	y := int(cv.px(BaseHeight - margin - qrSize))
	pad := int(cv.px(2))
	cv.dc.SetColor(colorPaper)
	cv.dc.DrawRectangle(float64(x-pad), float64(y-pad), float64(size+2*pad), float64(size+2*pad))
	cv.dc.Fill()
	cv.dc.DrawImage(img, x, y)
	return nil
}

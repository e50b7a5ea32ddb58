package card

import (
	"context"
	"image"
	"math"

	"github.com/matzehuels/cardsheet/pkg/cache"
	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/forms"
)

// DPI is the base resolution of a card at scale 1.
const DPI = 96

// Base card size in pixels at scale 1.
var (
	BaseWidth  = MMToPixels(compose.CardWidth, 1)
	BaseHeight = MMToPixels(compose.CardHeight, 1)
)

// MMToPixels converts millimeters to pixels at DPI × scale.
func MMToPixels(mm, scale float64) float64 {
	return mm / 25.4 * DPI * scale
}

// Size returns the pixel dimensions of a card drawn at scale.
func Size(scale float64) (int, int) {
	return int(math.Round(BaseWidth * scale)), int(math.Round(BaseHeight * scale))
}

// Card is everything printed on one ID card.
type Card struct {
	ID            string           `json:"id"`
	Data          forms.Values     `json:"data"`
	Fields        []forms.FieldKey `json:"fields"`
	SchoolName    string           `json:"schoolName"`
	SchoolAddress string           `json:"schoolAddress,omitempty"`
	BackgroundURL string           `json:"backgroundUrl,omitempty"`
}

// FromEntry builds a card for a listed submission. fields are the school's
// selected fields; form supplies the school address when known.
func FromEntry(e forms.Entry, fields []forms.FieldKey, form *forms.FormConfig, backgroundURL string) Card {
	c := Card{
		ID:            e.ID,
		Data:          e.Data,
		Fields:        fields,
		SchoolName:    e.SchoolName,
		BackgroundURL: backgroundURL,
	}
	if form != nil {
		c.SchoolAddress = form.SchoolAddress
		if c.SchoolName == "" {
			c.SchoolName = form.SchoolName
		}
	}
	return c
}

// Has reports whether key is printed on the card. With no field list, every
// key present in the data is printed.
func (c Card) Has(key forms.FieldKey) bool {
	if len(c.Fields) == 0 {
		_, ok := c.Data[string(key)]
		return ok
	}
	for _, f := range c.Fields {
		if f == key {
			return true
		}
	}
	return false
}

// Value returns the display value of key if the card prints it.
func (c Card) Value(key forms.FieldKey) string {
	if !c.Has(key) {
		return ""
	}
	return forms.DisplayValue(c.Data, key)
}

// Fingerprint hashes everything that affects the card's pixels.
func (c Card) Fingerprint() string {
	h, err := cache.HashJSON(c)
	if err != nil {
		return ""
	}
	return h
}

// Rasterizer draws cards.
type Rasterizer interface {
	Rasterize(ctx context.Context, c Card, scale float64) (image.Image, error)
}

// ImageSource loads images by URL.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

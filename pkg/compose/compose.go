package compose

import (
	"image"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// ErrEmptyInput is returned by Compose when there are no cards to place.
var ErrEmptyInput = apperr.New(apperr.ErrCodeEmptyInput, "select at least one ID card to export")

// CardVisual is a rasterized card and the id of the submission it shows.
type CardVisual struct {
	ID    string
	Image image.Image
}

// Width returns the pixel width of the card bitmap.
func (c CardVisual) Width() int {
	if c.Image == nil {
		return 0
	}
	return c.Image.Bounds().Dx()
}

// Height returns the pixel height of the card bitmap.
func (c CardVisual) Height() int {
	if c.Image == nil {
		return 0
	}
	return c.Image.Bounds().Dy()
}

// PlacedImage is a card positioned on a page. X and Y locate the top-left
// corner of the printed artwork, excluding bleed.
type PlacedImage struct {
	X, Y          float64
	Width, Height float64
	Row, Col      int
	Source        CardVisual
}

// CropMark is a cutting guide segment from (X1, Y1) to (X2, Y2).
type CropMark struct {
	X1, Y1, X2, Y2 float64
}

// Page is one physical page of the sheet.
type Page struct {
	Number        int
	Width, Height float64
	Images        []PlacedImage
	CropMarks     []CropMark
}

// Grid is the resolved sheet geometry for a set of options.
type Grid struct {
	Layout   Layout
	Page     PageSize
	Bleed    float64
	GapX     float64
	GapY     float64
	CellW    float64 // card footprint width including bleed
	CellH    float64 // card footprint height including bleed
	TotalW   float64
	TotalH   float64
	MarginX  float64
	MarginY  float64
	Sequence int // cards per page
}

// NewGrid resolves the layout and page tables and computes the centered grid.
func NewGrid(opts Options) Grid {
	l := ResolveLayout(opts.Layout)
	p := ResolvePageSize(opts.PageSize)

	g := Grid{Layout: l, Page: p, Sequence: l.CardsPerPage}
	if opts.IncludeBleed {
		g.Bleed = BleedMM
	}
	if l.Cols > 1 {
		g.GapX = GapX
	}
	if l.Rows > 1 {
		g.GapY = GapY
	}

	g.CellW = CardWidth + 2*g.Bleed
	g.CellH = CardHeight + 2*g.Bleed
	g.TotalW = g.CellW*float64(l.Cols) + g.GapX*float64(l.Cols-1)
	g.TotalH = g.CellH*float64(l.Rows) + g.GapY*float64(l.Rows-1)
	g.MarginX = (p.Width - g.TotalW) / 2
	g.MarginY = (p.Height - g.TotalH) / 2
	return g
}

// Slot returns the artwork origin of the card at the given grid cell.
func (g Grid) Slot(row, col int) (x, y float64) {
	x = g.MarginX + float64(col)*(g.CellW+g.GapX) + g.Bleed
	y = g.MarginY + float64(row)*(g.CellH+g.GapY) + g.Bleed
	return x, y
}

// PageCount returns the number of pages needed for n cards.
func (g Grid) PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + g.Sequence - 1) / g.Sequence
}

// Compose places cards on pages in input order.
func Compose(cards []CardVisual, opts Options) ([]Page, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyInput
	}

	g := NewGrid(opts)
	pages := make([]Page, 0, g.PageCount(len(cards)))

	for i, card := range cards {
		pos := i % g.Sequence
		row := pos / g.Layout.Cols
		col := pos % g.Layout.Cols

		if pos == 0 {
			pages = append(pages, Page{
				Number: len(pages) + 1,
				Width:  g.Page.Width,
				Height: g.Page.Height,
			})
		}
		page := &pages[len(pages)-1]

		x, y := g.Slot(row, col)
		page.Images = append(page.Images, PlacedImage{
			X:      x,
			Y:      y,
			Width:  CardWidth,
			Height: CardHeight,
			Row:    row,
			Col:    col,
			Source: card,
		})

		if opts.IncludeCropMarks {
			page.CropMarks = append(page.CropMarks, CropMarks(x, y, CardWidth, CardHeight)...)
		}
	}
	return pages, nil
}

// CropMarks returns the eight guide segments bracketing the corners of the
// rectangle at (x, y). Each segment continues one card edge outward, starting
// CropMarkOffset away from the corner.
func CropMarks(x, y, w, h float64) []CropMark {
	const l, o = CropMarkLength, CropMarkOffset
	return []CropMark{
		// top-left
		{x - o - l, y, x - o, y},
		{x, y - o - l, x, y - o},
		// top-right
		{x + w + o, y, x + w + o + l, y},
		{x + w, y - o - l, x + w, y - o},
		// bottom-left
		{x - o - l, y + h, x - o, y + h},
		{x, y + h + o, x, y + h + o + l},
		// bottom-right
		{x + w + o, y + h, x + w + o + l, y + h},
		{x + w, y + h + o, x + w, y + h + o + l},
	}
}

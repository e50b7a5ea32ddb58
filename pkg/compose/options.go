package compose

import "sort"

// Fixed card geometry in millimeters.
const (
	CardWidth  = 54.0 // portrait card width
	CardHeight = 84.0 // portrait card height

	BleedMM = 3.0  // bleed on each side when enabled
	GapX    = 8.0  // horizontal gap between columns
	GapY    = 10.0 // vertical gap between rows

	CropMarkLength = 5.0 // length of each crop mark segment
	CropMarkOffset = 2.0 // distance between card corner and crop mark
)

// Default option keys.
const (
	DefaultLayout   = "2x4"
	DefaultPageSize = "a4"
	DefaultQuality  = QualityHigh
)

// Layout is a grid of cards on one page.
type Layout struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	Rows         int    `json:"rows"`
	Cols         int    `json:"cols"`
	CardsPerPage int    `json:"cardsPerPage"`
}

// layouts is keyed by the historical option names; "2x4" is a 3×3 grid.
var layouts = map[string]Layout{
	"2x4": {Key: "2x4", Label: "9 cards (3×3 layout)", Rows: 3, Cols: 3, CardsPerPage: 9},
	"2x3": {Key: "2x3", Label: "6 cards (2×3 layout)", Rows: 3, Cols: 2, CardsPerPage: 6},
	"3x4": {Key: "3x4", Label: "12 cards (4×3 layout)", Rows: 3, Cols: 4, CardsPerPage: 12},
	"1x1": {Key: "1x1", Label: "1 card per page", Rows: 1, Cols: 1, CardsPerPage: 1},
}

// ResolveLayout returns the layout for key, or the default layout when the
// key is unknown.
func ResolveLayout(key string) Layout {
	if l, ok := layouts[key]; ok {
		return l
	}
	return layouts[DefaultLayout]
}

// Layouts returns all known layouts ordered by cards per page.
func Layouts() []Layout {
	out := make([]Layout, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardsPerPage < out[j].CardsPerPage })
	return out
}

// PageSize is a physical page in millimeters.
type PageSize struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var pageSizes = map[string]PageSize{
	"a4":     {Key: "a4", Label: "A4 (210 × 297 mm)", Width: 210, Height: 297},
	"a3":     {Key: "a3", Label: "A3 (297 × 420 mm)", Width: 297, Height: 420},
	"letter": {Key: "letter", Label: "Letter (216 × 279 mm)", Width: 216, Height: 279},
}

// ResolvePageSize returns the page size for key, or A4 when the key is
// unknown.
func ResolvePageSize(key string) PageSize {
	if p, ok := pageSizes[key]; ok {
		return p
	}
	return pageSizes[DefaultPageSize]
}

// PageSizes returns all known page sizes ordered by area.
func PageSizes() []PageSize {
	out := make([]PageSize, 0, len(pageSizes))
	for _, p := range pageSizes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Width*out[i].Height < out[j].Width*out[j].Height })
	return out
}

// Quality is a raster scale tier.
type Quality string

// Quality tiers.
const (
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
	QualityPrint    Quality = "print"
)

// Scale returns the raster scale factor for q. Unrecognized values rasterize
// at the standard 2× scale.
func (q Quality) Scale() float64 {
	switch q {
	case QualityPrint:
		return 4 // 300+ DPI
	case QualityHigh:
		return 3 // ~200 DPI
	default:
		return 2 // ~150 DPI
	}
}

// Label returns a human readable description of q.
func (q Quality) Label() string {
	switch q {
	case QualityPrint:
		return "Print Ready (300+ DPI)"
	case QualityHigh:
		return "High (~200 DPI)"
	default:
		return "Standard (~150 DPI)"
	}
}

// Qualities returns the quality tiers from lowest to highest.
func Qualities() []Quality {
	return []Quality{QualityStandard, QualityHigh, QualityPrint}
}

// Options describe the sheet the cards are laid out on.
type Options struct {
	Layout           string  `json:"layout"`
	PageSize         string  `json:"pageSize"`
	Quality          Quality `json:"quality"`
	IncludeBleed     bool    `json:"includeBleed"`
	IncludeCropMarks bool    `json:"includeCropMarks"`
}

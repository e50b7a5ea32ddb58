// Package pipeline runs a card export from submissions to a PDF document.
//
// # Architecture
//
// An export has three stages:
//
//  1. Rasterize: draw every card at the quality scale (cached)
//  2. Compose: lay the bitmaps out on pages in millimeters
//  3. Write: encode the pages as a PDF document
//
// A card that fails to rasterize is logged and skipped; it does not take a
// slot on the sheet. Cancelling the context aborts the export between cards.
//
// # Usage
//
//	runner := pipeline.NewRunner(card.NewRenderer(fetcher), cache, nil, logger)
//	opts := pipeline.Options{Layout: "3x4", Quality: compose.QualityPrint}
//	result, err := runner.Export(ctx, cards, opts, func(pct int) {
//	    fmt.Printf("\r%3d%%", pct)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.PDF, 0o644)
package pipeline

import (
	"strings"
	"time"

	"github.com/matzehuels/cardsheet/pkg/compose"
)

// AllSchools names an export that is not restricted to one school.
const AllSchools = "All-Schools"

// Options configures an export. The zero value exports on A4 in the default
// layout at high quality.
type Options struct {
	Layout           string          `json:"layout"`
	PageSize         string          `json:"pageSize"`
	Quality          compose.Quality `json:"quality"`
	IncludeBleed     bool            `json:"includeBleed"`
	IncludeCropMarks bool            `json:"includeCropMarks"`

	// School names the export in the suggested filename.
	School string `json:"school,omitempty"`

	// Date stamps the suggested filename. Zero means today.
	Date time.Time `json:"-"`
}

// Result is the outcome of an export.
type Result struct {
	PDF      []byte
	Pages    []compose.Page
	Skipped  []string // ids of cards that failed to rasterize
	Filename string
	Stats    Stats
}

// Stats contains export timing and counts.
type Stats struct {
	Cards       int
	Rendered    int
	Pages       int
	Bytes       int
	RasterTime  time.Duration
	ComposeTime time.Duration
	WriteTime   time.Duration
}

// SetDefaults fills empty option keys with their defaults. Layout and page
// size keys that are not in the option tables fall back to the defaults as
// well; an unknown quality is kept and rasterizes at the standard scale.
func (o *Options) SetDefaults() {
	if !knownLayout(o.Layout) {
		o.Layout = compose.DefaultLayout
	}
	if !knownPageSize(o.PageSize) {
		o.PageSize = compose.DefaultPageSize
	}
	if o.Quality == "" {
		o.Quality = compose.DefaultQuality
	}
}

// Compose returns the sheet options for the compositor.
func (o Options) Compose() compose.Options {
	return compose.Options{
		Layout:           o.Layout,
		PageSize:         o.PageSize,
		Quality:          o.Quality,
		IncludeBleed:     o.IncludeBleed,
		IncludeCropMarks: o.IncludeCropMarks,
	}
}

// Filename returns the suggested download name for an export of school on
// date, for example "ID-Cards-Green Valley-2024-06-01-PrintReady.pdf".
func Filename(school string, date time.Time, printReady bool) string {
	school = strings.TrimSpace(school)
	if school == "" {
		school = AllSchools
	}
	school = strings.NewReplacer("/", "-", `\`, "-", `"`, "").Replace(school)

	var b strings.Builder
	b.WriteString("ID-Cards-")
	b.WriteString(school)
	b.WriteString("-")
	b.WriteString(date.Format("2006-01-02"))
	if printReady {
		b.WriteString("-PrintReady")
	}
	b.WriteString(".pdf")
	return b.String()
}

func knownLayout(key string) bool {
	for _, l := range compose.Layouts() {
		if l.Key == key {
			return true
		}
	}
	return false
}

func knownPageSize(key string) bool {
	for _, p := range compose.PageSizes() {
		if p.Key == key {
			return true
		}
	}
	return false
}

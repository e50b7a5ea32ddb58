package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardsheet/pkg/cache"
	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/observability"
	"github.com/matzehuels/cardsheet/pkg/render/card"
	"github.com/matzehuels/cardsheet/pkg/render/sink"
)

// ProgressFunc receives the export progress as a percentage.
type ProgressFunc func(percent int)

// Runner executes exports.
//
// The Runner holds no per-export state; multiple goroutines can run exports
// on the same Runner concurrently.
type Runner struct {
	Rasterizer card.Rasterizer
	Logger     *log.Logger

	now func() time.Time
}

// NewRunner creates a runner around r. When c is non-nil, rendered cards are
// cached in it under keys from keyer (the default keyer when nil).
func NewRunner(r card.Rasterizer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c != nil {
		r = card.NewCached(r, c, keyer)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Rasterizer: r, Logger: logger, now: time.Now}
}

// Export rasterizes cards in order, composes the survivors onto pages and
// writes the PDF. progress may be nil.
func (r *Runner) Export(ctx context.Context, cards []card.Card, opts Options, progress ProgressFunc) (result *Result, err error) {
	if len(cards) == 0 {
		return nil, compose.ErrEmptyInput
	}
	opts.SetDefaults()
	if progress == nil {
		progress = func(int) {}
	}

	hooks := observability.Export()
	hooks.OnExportStart(ctx, len(cards), opts.Layout, opts.PageSize)
	start := r.now()
	defer func() {
		pages, skipped := 0, 0
		if result != nil {
			pages, skipped = len(result.Pages), len(result.Skipped)
		}
		hooks.OnExportComplete(ctx, pages, skipped, r.now().Sub(start), err)
	}()

	result = &Result{Stats: Stats{Cards: len(cards)}}
	scale := opts.Quality.Scale()

	visuals := make([]compose.CardVisual, 0, len(cards))
	for i, c := range cards {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress(percent(i, len(cards)))

		cardStart := r.now()
		img, err := r.Rasterizer.Rasterize(ctx, c, scale)
		hooks.OnCardRendered(ctx, c.ID, r.now().Sub(cardStart), err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.Logger.Warn("skipping card", "id", c.ID, "err", err)
			result.Skipped = append(result.Skipped, c.ID)
			continue
		}
		visuals = append(visuals, compose.CardVisual{ID: c.ID, Image: img})
	}
	result.Stats.Rendered = len(visuals)
	result.Stats.RasterTime = r.now().Sub(start)

	composeStart := r.now()
	pages, err := compose.Compose(visuals, opts.Compose())
	if err != nil {
		return nil, err
	}
	result.Pages = pages
	result.Stats.Pages = len(pages)
	result.Stats.ComposeTime = r.now().Sub(composeStart)

	date := opts.Date
	if date.IsZero() {
		date = r.now()
	}
	writeStart := r.now()
	pdf, err := sink.RenderPDF(pages,
		sink.WithTitle("ID Cards"),
		sink.WithCreationDate(date),
	)
	if err != nil {
		return nil, err
	}
	result.PDF = pdf
	result.Stats.Bytes = len(pdf)
	result.Stats.WriteTime = r.now().Sub(writeStart)
	result.Filename = Filename(opts.School, date, opts.Quality == compose.QualityPrint)

	progress(100)
	r.Logger.Info("exported cards",
		"cards", result.Stats.Rendered,
		"skipped", len(result.Skipped),
		"pages", result.Stats.Pages,
		"layout", opts.Layout,
		"page_size", opts.PageSize,
		"quality", opts.Quality,
		"duration", r.now().Sub(start))
	return result, nil
}

func percent(i, total int) int {
	return int(math.Round(float64(i) / float64(total) * 100))
}

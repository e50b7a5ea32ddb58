// Package render turns submissions into printable artwork.
//
// # Overview
//
// Rendering happens in two stages:
//
//  1. [card] draws one identity card as a bitmap at a scale factor. Scale 1
//     is 54 × 84 mm at 96 dpi; export quality tiers use 2, 3 or 4.
//  2. [sink] writes the pages laid out by [compose] to a PDF document or a
//     PNG preview.
//
// Between the two, [compose.Compose] decides where each card goes. It works
// in millimeters only and never looks at pixels, so the same sheet geometry
// is used for every quality tier.
//
//	r := card.NewRenderer(fetcher)
//	img, err := r.Rasterize(ctx, c, compose.QualityHigh.Scale())
//	pages, err := compose.Compose(visuals, opts)
//	pdf, err := sink.RenderPDF(pages)
//
// The [pipeline] package runs these stages for a whole export and should be
// preferred over calling them by hand.
//
// [card]: github.com/matzehuels/cardsheet/pkg/render/card
// [sink]: github.com/matzehuels/cardsheet/pkg/render/sink
// [compose]: github.com/matzehuels/cardsheet/pkg/compose
// [compose.Compose]: github.com/matzehuels/cardsheet/pkg/compose.Compose
// [pipeline]: github.com/matzehuels/cardsheet/pkg/pipeline
package render

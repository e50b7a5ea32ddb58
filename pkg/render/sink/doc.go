// Package sink writes composed card sheets to output formats.
//
// A sink takes the [compose.Page] descriptors produced by [compose.Compose]
// and turns them into bytes:
//
//   - PDF: one page per descriptor, cards placed at their millimeter
//     coordinates, crop marks drawn as hairlines
//   - PNG: a preview bitmap of a single page
//
// Basic usage:
//
//	pages, err := compose.Compose(cards, opts)
//	pdf, err := sink.RenderPDF(pages, sink.WithTitle("ID Cards"))
//	png, err := sink.RenderPagePNG(pages[0], 96)
//
// Card bitmaps are embedded losslessly as PNG. The PDF page size is taken from
// each descriptor, so a document always matches the sheet it was composed for.
//
// [compose.Page]: github.com/matzehuels/cardsheet/pkg/compose.Page
// [compose.Compose]: github.com/matzehuels/cardsheet/pkg/compose.Compose
package sink

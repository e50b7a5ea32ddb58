// Package compose lays out rasterized ID cards on printable pages.
//
// # Overview
//
// The compositor takes an ordered list of [CardVisual] values (one bitmap per
// card, produced by a rasterizer) and an [Options] value describing the sheet,
// and produces one [Page] per physical page. Pages carry [PlacedImage]
// regions and optional [CropMark] segments, all in millimeters. A document
// writer turns the pages into a printable file.
//
// The compositor is resolution independent: the quality option only decides
// the scale at which cards are rasterized before they get here.
//
// # Sheet Geometry
//
// Cards are always 54mm × 84mm portrait ([CardWidth], [CardHeight]). With
// bleed enabled each card reserves an extra [BleedMM] on every side, but the
// printed artwork keeps its size. Cards in a row are separated by [GapX] and
// rows by [GapY] (no gap when there is a single column or row). The full grid
// is centered on the page, and the same margins are used on every page,
// including a partially filled last page:
//
//	g := compose.NewGrid(compose.Options{Layout: "2x4", PageSize: "a4"})
//	fmt.Println(g.MarginX, g.MarginY)
//
// # Option Tables
//
// Layouts, page sizes and qualities come from fixed tables ([Layouts],
// [PageSizes], [Qualities]). Unknown layout and page size keys are not
// errors: they fall back to [DefaultLayout] (3×3, nine cards per page) and
// [DefaultPageSize] (A4).
//
// # Pagination
//
// Card i lands at position i mod cardsPerPage of page i div cardsPerPage,
// filled left-to-right then top-to-bottom. Compose fails only when no cards
// are supplied.
package compose

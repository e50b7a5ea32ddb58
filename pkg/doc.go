// Package pkg provides the core libraries for Cardsheet, a school ID card
// service.
//
// # Overview
//
// Administrators define enrollment forms per school and class, students (or
// staff on their behalf) submit their details and a photo, and the collected
// submissions are exported as print-ready PDF sheets of 54 × 84 mm identity
// cards. The pkg directory is organized into these areas:
//
//  1. [forms] and [settings] - Domain types (form definitions, submissions,
//     field catalog, card backgrounds)
//  2. [storage] - Document persistence (MongoDB or in-memory)
//  3. [compose], [render/card] and [render/sink] - Card rasterization, sheet
//     layout and PDF output
//  4. [pipeline] - Orchestration (select → rasterize → compose → write)
//  5. [api] - The HTTP surface used by the admin panel and the public form
//  6. [auth], [session], [media], [cache] - Infrastructure
//
// # Architecture
//
// The typical data flow of an export:
//
//	Submissions + forms + settings (storage)
//	         ↓
//	    [pipeline.LoadCards] (filter and join into card records)
//	         ↓
//	    [render/card] (one bitmap per card, cached by fingerprint)
//	         ↓
//	    [compose] (grid placement in millimeters)
//	         ↓
//	    [render/sink] (PDF document or PNG preview)
//
// # Quick Start
//
// Export every card of one school to a PDF:
//
//	import (
//	    "github.com/matzehuels/cardsheet/pkg/forms"
//	    "github.com/matzehuels/cardsheet/pkg/pipeline"
//	    "github.com/matzehuels/cardsheet/pkg/render/card"
//	    "github.com/matzehuels/cardsheet/pkg/storage/memory"
//	)
//
//	store := memory.New()
//	cards, err := pipeline.LoadCards(ctx, store, pipeline.Selection{
//	    Filter: forms.Filter{School: "Hill Top"},
//	})
//	runner := pipeline.NewRunner(card.NewRenderer(fetcher), nil, nil, logger)
//	result, err := runner.Export(ctx, cards, pipeline.Options{Layout: "2x5"}, nil)
//	os.WriteFile(result.Filename, result.PDF, 0o644)
//
// # Main Packages
//
// ## Domain
//
//   - [forms]: Form definitions, the field catalog, submission validation,
//     school grouping and search filters.
//   - [settings]: Card background images and the active selection.
//
// ## Storage
//
//   - [storage]: Repository interfaces shared by every backend.
//   - [storage/mongo]: MongoDB documents (forms, submissions, settings).
//   - [storage/memory]: In-process store used by tests and --memory mode.
//
// ## Rendering
//
//   - [render/card]: Draws a single card (background, photo, fields, QR code).
//   - [compose]: Sheet layouts, page sizes, quality tiers and placement.
//   - [render/sink]: PDF writer and PNG page preview.
//
// ## Infrastructure
//
//   - [api]: chi router, JSON envelope and handlers.
//   - [auth] and [session]: Administrator login with bearer sessions.
//   - [media]: Image uploads to local disk or Cloudinary, plus fetching.
//   - [cache]: Rasterized card cache (file, Redis or none).
//   - [config]: TOML configuration with environment overrides.
//   - [io]: JSON backup and restore of all documents.
//   - [errors]: Coded errors mapped to HTTP statuses.
//
// # Testing
//
// [storage/storagetest] runs the same contract suite against every store
// implementation. Handler tests in [api] use the in-memory store and a blank
// rasterizer so they never touch the network.
//
// [forms]: github.com/matzehuels/cardsheet/pkg/forms
// [settings]: github.com/matzehuels/cardsheet/pkg/settings
// [storage]: github.com/matzehuels/cardsheet/pkg/storage
// [storage/mongo]: github.com/matzehuels/cardsheet/pkg/storage/mongo
// [storage/memory]: github.com/matzehuels/cardsheet/pkg/storage/memory
// [storage/storagetest]: github.com/matzehuels/cardsheet/pkg/storage/storagetest
// [compose]: github.com/matzehuels/cardsheet/pkg/compose
// [render/card]: github.com/matzehuels/cardsheet/pkg/render/card
// [render/sink]: github.com/matzehuels/cardsheet/pkg/render/sink
// [pipeline]: github.com/matzehuels/cardsheet/pkg/pipeline
// [pipeline.LoadCards]: github.com/matzehuels/cardsheet/pkg/pipeline.LoadCards
// [api]: github.com/matzehuels/cardsheet/pkg/api
// [auth]: github.com/matzehuels/cardsheet/pkg/auth
// [session]: github.com/matzehuels/cardsheet/pkg/session
// [media]: github.com/matzehuels/cardsheet/pkg/media
// [cache]: github.com/matzehuels/cardsheet/pkg/cache
// [config]: github.com/matzehuels/cardsheet/pkg/config
// [io]: github.com/matzehuels/cardsheet/pkg/io
// [errors]: github.com/matzehuels/cardsheet/pkg/errors
package pkg

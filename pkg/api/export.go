package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/matzehuels/cardsheet/pkg/compose"
	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/pipeline"
)

// Export response headers.
const (
	HeaderExportPages  = "X-Export-Pages"
	HeaderCardsSkipped = "X-Cards-Skipped"
)

type qualityOption struct {
	Key   compose.Quality `json:"key"`
	Label string          `json:"label"`
	Scale float64         `json:"scale"`
}

type exportOptions struct {
	Layouts   []compose.Layout   `json:"layouts"`
	PageSizes []compose.PageSize `json:"pageSizes"`
	Qualities []qualityOption    `json:"qualities"`
	Defaults  pipeline.Options   `json:"defaults"`
}

func (s *Server) exportOptions(w http.ResponseWriter, r *http.Request) {
	out := exportOptions{
		Layouts:   compose.Layouts(),
		PageSizes: compose.PageSizes(),
		Defaults:  s.defaults,
	}
	out.Defaults.SetDefaults()
	for _, q := range compose.Qualities() {
		out.Qualities = append(out.Qualities, qualityOption{Key: q, Label: q.Label(), Scale: q.Scale()})
	}
	ok(w, "", out)
}

// exportRequest selects cards either by submission id or by filter.
type exportRequest struct {
	pipeline.Selection
	Options pipeline.Options `json:"options"`
}

// merge overlays the keys set in the request on the server defaults.
func (req exportRequest) merge(defaults pipeline.Options) pipeline.Options {
	opts := defaults
	if req.Options.Layout != "" {
		opts.Layout = req.Options.Layout
	}
	if req.Options.PageSize != "" {
		opts.PageSize = req.Options.PageSize
	}
	if req.Options.Quality != "" {
		opts.Quality = req.Options.Quality
	}
	opts.IncludeBleed = req.Options.IncludeBleed
	opts.IncludeCropMarks = req.Options.IncludeCropMarks
	opts.School = req.Filter.School
	return opts
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, r, s.logger, apperr.New(apperr.ErrCodeUnsupported, "Export is not configured"))
		return
	}
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	opts := req.merge(s.defaults)

	cards, err := pipeline.LoadCards(r.Context(), s.store, req.Selection)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	result, err := s.exporter.Export(r.Context(), cards, opts, nil)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(result.PDF)))
	h.Set(HeaderExportPages, strconv.Itoa(len(result.Pages)))
	h.Set(HeaderCardsSkipped, strconv.Itoa(len(result.Skipped)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PDF)
}

// Package api serves the cardsheet HTTP API.
//
// All JSON responses share one envelope:
//
//	{"success": true, "message": "...", "data": ..., "errors": [...]}
//
// Public routes list forms, describe their fields and accept submissions.
// Admin routes require an "Authorization: Bearer <token>" header carrying a
// session id returned by POST /api/admin/login. Errors carry a status
// derived from their code: invalid input is 400, missing or expired
// sessions 401, ownership mismatches 403, unknown documents 404 and name
// clashes 409.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cardsheet/pkg/auth"
	"github.com/matzehuels/cardsheet/pkg/buildinfo"
	"github.com/matzehuels/cardsheet/pkg/media"
	"github.com/matzehuels/cardsheet/pkg/pipeline"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// Config holds the collaborators of a [Server].
type Config struct {
	Store    storage.Store
	Auth     *auth.Authenticator
	Uploader media.Uploader
	Exporter *pipeline.Runner

	// Local, when set, is served under /media/.
	Local *media.LocalStore

	// Export holds defaults applied to export requests.
	Export pipeline.Options

	Logger *log.Logger
}

// Server routes API requests.
type Server struct {
	store    storage.Store
	auth     *auth.Authenticator
	uploader media.Uploader
	exporter *pipeline.Runner
	local    *media.LocalStore
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{
		store:    cfg.Store,
		auth:     cfg.Auth,
		uploader: cfg.Uploader,
		exporter: cfg.Exporter,
		local:    cfg.Local,
		defaults: cfg.Export,
		logger:   cfg.Logger,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	admin := requireAdmin(s.auth, s.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", s.listPublicForms)
			r.Get("/fields/available", s.availableFields)
			r.Get("/{formID}/structure", s.formStructure)
			r.Post("/{formID}/submit", s.submit)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/schools/all", s.listSchools)
				r.Get("/school/{school}/submissions", s.schoolSubmissions)
				r.Get("/{formID}/submissions", s.formSubmissions)
				r.Put("/{formID}/submissions/{submissionID}", s.updateSubmission)
				r.Delete("/{formID}/submissions/{submissionID}", s.deleteSubmission)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.login)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/logout", s.logout)

				r.Get("/forms", s.listForms)
				r.Post("/forms", s.createForm)
				r.Get("/forms/{id}", s.getForm)
				r.Put("/forms/{id}", s.updateForm)
				r.Delete("/forms/{id}", s.deleteForm)
				r.Get("/fields/available", s.availableFields)

				r.Get("/id-card-settings", s.getSettings)
				r.Post("/id-card-settings/background", s.uploadBackground)
				r.Put("/id-card-settings/background/{imageID}/activate", s.activateBackground)
				r.Delete("/id-card-settings/background/active/clear", s.clearBackground)
				r.Delete("/id-card-settings/background/{imageID}", s.deleteBackground)

				r.Get("/export/options", s.exportOptions)
				r.Post("/export", s.export)
			})
		})
	})

	if s.local != nil {
		r.Handle(media.LocalPrefix+"*", s.local.Handler())
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, Envelope{Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Envelope{Message: "Method not allowed"})
	})
	return r
}

type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Storage string `json:"storage"`
	Time    string `json:"time"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	h := healthStatus{Status: "ok", Version: buildinfo.Version, Storage: "ok", Time: time.Now().UTC().Format(time.RFC3339)}
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("storage ping failed", "err", err)
		h.Status, h.Storage = "degraded", "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, Envelope{Message: "Storage unreachable", Data: h})
		return
	}
	ok(w, "", h)
}

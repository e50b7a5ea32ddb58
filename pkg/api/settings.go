package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/media"
	"github.com/matzehuels/cardsheet/pkg/settings"
)

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Settings().Load(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", st)
}

func (s *Server) uploadBackground(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.BackgroundKind.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		writeError(w, r, s.logger, tooLargeOr(err, media.BackgroundKind))
		return
	}
	asset, err := s.receiveImage(r, "backgroundImage", media.BackgroundKind, media.BackgroundFolder)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if asset == nil {
		writeError(w, r, s.logger, apperr.New(apperr.ErrCodeInvalidInput, "No image file provided"))
		return
	}

	st, err := s.store.Settings().Load(r.Context())
	if err != nil {
		s.discard(r.Context(), asset)
		writeError(w, r, s.logger, err)
		return
	}
	img := st.AddBackground(settings.BackgroundImage{
		URL:      asset.URL,
		PublicID: asset.PublicID,
		Filename: asset.Filename,
	})
	if err := s.store.Settings().Save(r.Context(), st); err != nil {
		s.discard(r.Context(), asset)
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("background uploaded", "id", img.ID, "active", st.ActiveBackgroundID == img.ID)
	ok(w, "Background image uploaded successfully", st)
}

// updateSettings loads the settings, applies fn and saves the result. It
// reports whether the settings were saved.
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request, message string, fn func(*settings.Settings) error) bool {
	st, err := s.store.Settings().Load(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return false
	}
	if err := fn(st); err != nil {
		if apperr.Is(err, apperr.ErrCodeNotFound) {
			writeJSON(w, http.StatusNotFound, Envelope{Message: "Background image not found"})
			return false
		}
		writeError(w, r, s.logger, err)
		return false
	}
	if err := s.store.Settings().Save(r.Context(), st); err != nil {
		writeError(w, r, s.logger, err)
		return false
	}
	ok(w, message, st)
	return true
}

func (s *Server) activateBackground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageID")
	s.updateSettings(w, r, "Background image activated", func(st *settings.Settings) error {
		return st.Activate(id)
	})
}

func (s *Server) clearBackground(w http.ResponseWriter, r *http.Request) {
	s.updateSettings(w, r, "Active background cleared", func(st *settings.Settings) error {
		st.ClearActive()
		return nil
	})
}

// deleteBackground removes the image from the settings and then, best
// effort, from the image host.
func (s *Server) deleteBackground(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "imageID")
	var removed settings.BackgroundImage
	saved := s.updateSettings(w, r, "Background image deleted", func(st *settings.Settings) error {
		var err error
		removed, err = st.RemoveBackground(id)
		return err
	})
	if saved && removed.PublicID != "" {
		s.discard(r.Context(), &media.Asset{PublicID: removed.PublicID})
	}
}

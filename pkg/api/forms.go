package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// formRequest is the body of form create and update requests.
type formRequest struct {
	FormName       string                `json:"formName"`
	SchoolName     string                `json:"schoolName"`
	SchoolAddress  string                `json:"schoolAddress"`
	SelectedFields []forms.SelectedField `json:"selectedFields"`
	IsActive       *bool                 `json:"isActive"`
}

func (req formRequest) apply(f *forms.FormConfig) {
	f.FormName = req.FormName
	f.SchoolName = req.SchoolName
	f.SchoolAddress = req.SchoolAddress
	f.SelectedFields = req.SelectedFields
	if f.SelectedFields == nil {
		f.SelectedFields = []forms.SelectedField{}
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
}

func (s *Server) listPublicForms(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Forms().List(r.Context(), true)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", nonNil(list))
}

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.Forms().List(r.Context(), false)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", nonNil(list))
}

func (s *Server) availableFields(w http.ResponseWriter, r *http.Request) {
	ok(w, "", forms.CatalogJSON())
}

func (s *Server) loadForm(w http.ResponseWriter, r *http.Request, id string) (*forms.FormConfig, bool) {
	f, err := s.store.Forms().Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, Envelope{Message: "Form not found"})
		return nil, false
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return nil, false
	}
	return f, true
}

func (s *Server) formStructure(w http.ResponseWriter, r *http.Request) {
	f, found := s.loadForm(w, r, chi.URLParam(r, "formID"))
	if !found {
		return
	}
	ok(w, "", f.Structure())
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	f, found := s.loadForm(w, r, chi.URLParam(r, "id"))
	if !found {
		return
	}
	ok(w, "", f)
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	f := &forms.FormConfig{IsActive: true}
	req.apply(f)
	f.Normalize()
	if err := f.Validate(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Forms().Create(r.Context(), f); err != nil {
		writeError(w, r, s.logger, duplicateName(err, f.FormName))
		return
	}
	s.logger.Info("form created", "id", f.ID, "name", f.FormName, "school", f.SchoolName)
	created(w, "Form created successfully", f)
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	f, found := s.loadForm(w, r, chi.URLParam(r, "id"))
	if !found {
		return
	}
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	req.apply(f)
	f.Normalize()
	if err := f.Validate(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Forms().Update(r.Context(), f); err != nil {
		writeError(w, r, s.logger, duplicateName(err, f.FormName))
		return
	}
	ok(w, "Form updated successfully", f)
}

type deleteFormResult struct {
	DeletedSubmissions int `json:"deletedSubmissions"`
}

// deleteForm removes the form and every submission made against it.
func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, found := s.loadForm(w, r, id); !found {
		return
	}
	if err := s.store.Forms().Delete(r.Context(), id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	n, err := s.store.Submissions().DeleteByForm(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, fmt.Errorf("delete submissions of form %s: %w", id, err))
		return
	}
	s.logger.Info("form deleted", "id", id, "submissions", n)
	ok(w, "Form deleted successfully", deleteFormResult{DeletedSubmissions: n})
}

func (s *Server) listSchools(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.Forms().List(r.Context(), false)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	counts, err := s.store.Submissions().CountByForm(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", nonNil(forms.GroupBySchool(all, counts)))
}

func duplicateName(err error, name string) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return apperr.New(apperr.ErrCodeDuplicate, "A form named %q already exists", name)
	}
	return err
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/media"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// multipartOverhead is room for the text fields of a multipart upload.
const multipartOverhead = 1 << 20

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	f, found := s.loadForm(w, r, chi.URLParam(r, "formID"))
	if !found {
		return
	}
	if !f.IsActive {
		writeError(w, r, s.logger, apperr.New(apperr.ErrCodeForbidden, "This form is not accepting submissions"))
		return
	}

	var (
		values forms.Values
		photo  *media.Asset
		err    error
	)
	if isMultipart(r) {
		values, photo, err = s.readMultipartSubmission(w, r)
	} else {
		values, err = readJSONValues(r)
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	clean, err := forms.ValidateSubmission(f, values)
	if err != nil {
		s.discard(r.Context(), photo)
		writeError(w, r, s.logger, err)
		return
	}
	sub := &forms.Submission{FormConfigID: f.ID, Data: clean}
	if err := s.store.Submissions().Create(r.Context(), sub); err != nil {
		s.discard(r.Context(), photo)
		writeError(w, r, s.logger, err)
		return
	}
	s.logger.Info("form submitted", "form", f.FormName, "id", sub.ID)
	created(w, "Form submitted successfully", sub)
}

func (s *Server) readMultipartSubmission(w http.ResponseWriter, r *http.Request) (forms.Values, *media.Asset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, media.PhotoKind.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		return nil, nil, tooLargeOr(err, media.PhotoKind)
	}
	values := make(forms.Values, len(r.MultipartForm.Value))
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			values[k] = vs[0]
		}
	}
	asset, err := s.receiveImage(r, string(forms.FieldPhoto), media.PhotoKind, media.PhotoFolder)
	if err != nil {
		return nil, nil, err
	}
	if asset != nil {
		values[string(forms.FieldPhoto)] = &forms.Photo{
			Filename: asset.Filename,
			URL:      asset.URL,
			PublicID: asset.PublicID,
			MimeType: asset.MimeType,
			Size:     asset.Size,
		}
	}
	return values, asset, nil
}

// receiveImage uploads the file in form field name. It returns nil when the
// field is absent. The content type is sniffed from the file itself.
func (s *Server) receiveImage(r *http.Request, name string, kind media.Kind, folder string) (*media.Asset, error) {
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "Could not read %s", kind.Name)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidImage, err, "Could not read %s", kind.Name)
	}
	contentType := http.DetectContentType(head[:n])
	if err := media.CheckImage(contentType, header.Size, kind); err != nil {
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInternal, err, "rewind upload")
	}
	if s.uploader == nil {
		return nil, apperr.New(apperr.ErrCodeUnsupported, "Image uploads are not configured")
	}

	asset, err := s.uploader.Upload(r.Context(), folder, header.Filename, contentType, file)
	if err != nil {
		return nil, err
	}
	if asset.Filename == "" {
		asset.Filename = header.Filename
	}
	return &asset, nil
}

// discard removes an uploaded image whose submission was not stored.
func (s *Server) discard(ctx context.Context, asset *media.Asset) {
	if asset == nil || s.uploader == nil {
		return
	}
	if err := s.uploader.Destroy(ctx, asset.PublicID); err != nil {
		s.logger.Warn("could not remove orphaned upload", "public_id", asset.PublicID, "err", err)
	}
}

func (s *Server) formSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.Submissions().ListByForms(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", nonNil(subs))
}

// schoolSubmissions lists the submissions of every form of a school. The
// query parameters className, studentName and section narrow the list.
func (s *Server) schoolSubmissions(w http.ResponseWriter, r *http.Request) {
	school, err := url.PathUnescape(chi.URLParam(r, "school"))
	if err != nil {
		writeError(w, r, s.logger, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "Invalid school name"))
		return
	}
	entries, err := s.entries(r.Context(), forms.Filter{
		School:  school,
		Class:   r.URL.Query().Get("className"),
		Name:    r.URL.Query().Get("studentName"),
		Section: r.URL.Query().Get("section"),
	}, true)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "", nonNil(entries))
}

// entries loads enriched submissions matching filter. With exactSchool the
// school name must match exactly instead of by substring.
func (s *Server) entries(ctx context.Context, filter forms.Filter, exactSchool bool) ([]forms.Entry, error) {
	var (
		list []forms.FormConfig
		err  error
	)
	if exactSchool && filter.School != "" {
		list, err = s.store.Forms().ListBySchool(ctx, filter.School)
	} else {
		list, err = s.store.Forms().List(ctx, false)
	}
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	ids := make([]string, len(list))
	for i, f := range list {
		ids[i] = f.ID
	}
	subs, err := s.store.Submissions().ListByForms(ctx, ids...)
	if err != nil {
		return nil, err
	}
	entries := forms.Enrich(subs, list)
	if exactSchool {
		filter.School = ""
	}
	return filter.Apply(entries), nil
}

// loadOwnedSubmission fetches a submission and checks it belongs to the form
// in the URL.
func (s *Server) loadOwnedSubmission(w http.ResponseWriter, r *http.Request) (*forms.Submission, bool) {
	formID := chi.URLParam(r, "formID")
	sub, err := s.store.Submissions().Get(r.Context(), chi.URLParam(r, "submissionID"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, Envelope{Message: "Submission not found"})
		return nil, false
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return nil, false
	}
	if sub.FormConfigID != formID {
		writeError(w, r, s.logger, apperr.New(apperr.ErrCodeForbidden, "Submission does not belong to this form"))
		return nil, false
	}
	return sub, true
}

func (s *Server) updateSubmission(w http.ResponseWriter, r *http.Request) {
	sub, found := s.loadOwnedSubmission(w, r)
	if !found {
		return
	}
	f, found := s.loadForm(w, r, sub.FormConfigID)
	if !found {
		return
	}
	values, err := readJSONValues(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	clean, err := forms.ValidateSubmission(f, values)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	updated, err := s.store.Submissions().UpdateData(r.Context(), sub.ID, clean)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ok(w, "Submission updated successfully", updated)
}

func (s *Server) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	sub, found := s.loadOwnedSubmission(w, r)
	if !found {
		return
	}
	if err := s.store.Submissions().Delete(r.Context(), sub.ID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if p := sub.Data.Photo(); p != nil && p.PublicID != "" {
		s.discard(r.Context(), &media.Asset{PublicID: p.PublicID})
	}
	ok(w, "Submission deleted successfully", nil)
}

// readJSONValues accepts either {"submissionData": {...}} or the field map
// itself.
func readJSONValues(r *http.Request) (forms.Values, error) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	if inner, ok := body["submissionData"].(map[string]any); ok {
		return forms.Values(inner), nil
	}
	return forms.Values(body), nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func tooLargeOr(err error, kind media.Kind) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.New(apperr.ErrCodeInvalidImage, "%s is too large", kind.Name)
	}
	return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "Invalid multipart body")
}

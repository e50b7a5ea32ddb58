package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// LocalPrefix is the URL path under which [LocalStore] files are served.
const LocalPrefix = "/media/"

// LocalStore keeps uploads in a directory on disk.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed. baseURL is prepended to file URLs;
// leave it empty to return paths relative to the server root.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the storage directory.
func (s *LocalStore) Dir() string { return s.dir }

// Upload writes the image to folder/<uuid><ext>. The public id is the path
// relative to the store directory.
func (s *LocalStore) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error) {
	folder = path.Clean("/" + folder)[1:]
	if err := os.MkdirAll(filepath.Join(s.dir, filepath.FromSlash(folder)), 0o755); err != nil {
		return Asset{}, apperr.Wrap(apperr.ErrCodeUpload, err, "create folder %s", folder)
	}

	ext := Extension(contentType)
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	publicID := path.Join(folder, uuid.NewString()+ext)

	f, err := os.Create(filepath.Join(s.dir, filepath.FromSlash(publicID)))
	if err != nil {
		return Asset{}, apperr.Wrap(apperr.ErrCodeUpload, err, "store %s", filename)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return Asset{}, apperr.Wrap(apperr.ErrCodeUpload, err, "store %s", filename)
	}

	return Asset{
		URL:      s.baseURL + LocalPrefix + publicID,
		PublicID: publicID,
		Filename: filename,
		MimeType: normalizeType(contentType),
		Size:     n,
	}, nil
}

// Destroy removes the file with publicID.
func (s *LocalStore) Destroy(ctx context.Context, publicID string) error {
	p, ok := s.resolve(publicID)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.ErrCodeUpload, err, "delete %s", publicID)
	}
	return nil
}

// Open opens the stored file for a URL produced by Upload.
func (s *LocalStore) Open(url string) (*os.File, error) {
	i := strings.Index(url, LocalPrefix)
	if i < 0 {
		return nil, os.ErrNotExist
	}
	p, ok := s.resolve(url[i+len(LocalPrefix):])
	if !ok {
		return nil, os.ErrNotExist
	}
	return os.Open(p)
}

// resolve maps a public id to a file path inside the store directory.
func (s *LocalStore) resolve(publicID string) (string, bool) {
	clean := path.Clean("/" + publicID)[1:]
	if clean == "" || clean == "." {
		return "", false
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), true
}

// Handler serves stored files. Mount it at LocalPrefix.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(LocalPrefix, http.FileServer(http.Dir(s.dir)))
}

var _ Uploader = (*LocalStore)(nil)

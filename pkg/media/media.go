// Package media uploads images to an image host and fetches them back.
//
// Two [Uploader] implementations exist: [Cloudinary] talks to the hosted
// service over its signed REST API; [LocalStore] writes files to a directory
// that the HTTP server exposes under /media/. [Fetcher] downloads and
// decodes images by URL for card rendering.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// Folders images are uploaded into.
const (
	PhotoFolder      = "form_uploads"
	BackgroundFolder = "id_card_backgrounds"
)

// Asset describes an uploaded image.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// Uploader stores images on an image host.
type Uploader interface {
	// Upload stores the image read from r under folder.
	Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error)

	// Destroy deletes the image with publicID. Deleting a missing image is
	// not an error.
	Destroy(ctx context.Context, publicID string) error
}

// Kind is a class of upload with its own limits.
type Kind struct {
	Name     string
	MaxBytes int64
	Types    []string
}

// Upload kinds.
var (
	PhotoKind = Kind{
		Name:     "photo",
		MaxBytes: 10 << 20,
		Types:    []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	}
	BackgroundKind = Kind{
		Name:     "background image",
		MaxBytes: 5 << 20,
		Types:    []string{"image/jpeg", "image/png", "image/webp"},
	}
)

// CheckImage validates an upload's content type and size against kind.
func CheckImage(contentType string, size int64, kind Kind) error {
	ct := normalizeType(contentType)
	allowed := false
	for _, t := range kind.Types {
		if t == ct {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.New(apperr.ErrCodeInvalidImage, "%s must be one of %s, got %q",
			kind.Name, strings.Join(kind.Types, ", "), contentType)
	}
	if size <= 0 {
		return apperr.New(apperr.ErrCodeInvalidImage, "%s is empty", kind.Name)
	}
	if size > kind.MaxBytes {
		return apperr.New(apperr.ErrCodeInvalidImage, "%s is %s, the limit is %s",
			kind.Name, humanSize(size), humanSize(kind.MaxBytes))
	}
	return nil
}

func normalizeType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

// Extension returns the file extension for an image content type.
func Extension(contentType string) string {
	switch normalizeType(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}

// Package settings holds the card settings document: the uploaded card
// background images and which of them is active.
//
// There is a single settings document per deployment. All rules about the
// active background live on [Settings] so the API, the exporter and the CLI
// resolve it the same way.
package settings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// BackgroundImage is an uploaded card background.
type BackgroundImage struct {
	ID         string    `json:"_id"`
	URL        string    `json:"url"`
	PublicID   string    `json:"publicId"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Settings is the card settings document.
type Settings struct {
	BackgroundImages   []BackgroundImage `json:"backgroundImages"`
	ActiveBackgroundID string            `json:"activeBackgroundId,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// New returns empty settings.
func New() *Settings {
	return &Settings{BackgroundImages: []BackgroundImage{}, UpdatedAt: time.Now().UTC()}
}

// Active returns the active background, or nil when none is set or the
// active id no longer matches an image.
func (s *Settings) Active() *BackgroundImage {
	if s == nil || s.ActiveBackgroundID == "" {
		return nil
	}
	for i := range s.BackgroundImages {
		if s.BackgroundImages[i].ID == s.ActiveBackgroundID {
			return &s.BackgroundImages[i]
		}
	}
	return nil
}

// ActiveURL returns the URL of the active background, or "".
func (s *Settings) ActiveURL() string {
	if bg := s.Active(); bg != nil {
		return bg.URL
	}
	return ""
}

// Find returns the image with id, or nil.
func (s *Settings) Find(id string) *BackgroundImage {
	for i := range s.BackgroundImages {
		if s.BackgroundImages[i].ID == id {
			return &s.BackgroundImages[i]
		}
	}
	return nil
}

// AddBackground appends img, assigning an id and upload time when missing.
// The first image added becomes active.
func (s *Settings) AddBackground(img BackgroundImage) BackgroundImage {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.UploadedAt.IsZero() {
		img.UploadedAt = time.Now().UTC()
	}
	if img.Filename == "" {
		img.Filename = "Background Image"
	}
	s.BackgroundImages = append(s.BackgroundImages, img)
	if len(s.BackgroundImages) == 1 {
		s.ActiveBackgroundID = img.ID
	}
	s.touch()
	return img
}

// Activate makes the image with id active.
func (s *Settings) Activate(id string) error {
	if s.Find(id) == nil {
		return notFound(id)
	}
	s.ActiveBackgroundID = id
	s.touch()
	return nil
}

// RemoveBackground removes the image with id and returns it. If it was
// active, the first remaining image becomes active, or none.
func (s *Settings) RemoveBackground(id string) (BackgroundImage, error) {
	idx := -1
	for i := range s.BackgroundImages {
		if s.BackgroundImages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return BackgroundImage{}, notFound(id)
	}

	removed := s.BackgroundImages[idx]
	s.BackgroundImages = append(s.BackgroundImages[:idx:idx], s.BackgroundImages[idx+1:]...)

	if s.ActiveBackgroundID == id {
		s.ActiveBackgroundID = ""
		if len(s.BackgroundImages) > 0 {
			s.ActiveBackgroundID = s.BackgroundImages[0].ID
		}
	}
	s.touch()
	return removed, nil
}

// ClearActive leaves the images in place but makes none active.
func (s *Settings) ClearActive() {
	s.ActiveBackgroundID = ""
	s.touch()
}

func (s *Settings) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// MarshalJSON includes the resolved active background.
func (s Settings) MarshalJSON() ([]byte, error) {
	type plain Settings
	images := s.BackgroundImages
	if images == nil {
		images = []BackgroundImage{}
	}
	p := plain(s)
	p.BackgroundImages = images
	return json.Marshal(struct {
		plain
		ActiveBackground *BackgroundImage `json:"activeBackground"`
	}{p, s.Active()})
}

func notFound(id string) error {
	return apperr.New(apperr.ErrCodeNotFound, "background image %q not found", id)
}

package forms

import (
	"strings"
	"time"
)

// Photo is an uploaded image stored with a submission.
type Photo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	PublicID string `json:"cloudinaryPublicId,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Values are submitted field values keyed by field name.
type Values map[string]any

// String returns the trimmed text value of key, or "".
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return strings.TrimSpace(s)
}

// Photo returns the photo stored under the photo field, if any.
func (v Values) Photo() *Photo {
	return photoFrom(v[string(FieldPhoto)])
}

// photoFrom accepts the shapes a photo value takes after decoding: a *Photo,
// a Photo, a generic map, or a bare URL string.
func photoFrom(raw any) *Photo {
	switch p := raw.(type) {
	case *Photo:
		if p == nil || p.URL == "" {
			return nil
		}
		return p
	case Photo:
		if p.URL == "" {
			return nil
		}
		return &p
	case map[string]any:
		url, _ := p["url"].(string)
		if url == "" {
			return nil
		}
		ph := &Photo{URL: url}
		ph.Filename, _ = p["filename"].(string)
		ph.MimeType, _ = p["mimetype"].(string)
		if id, ok := p["cloudinaryPublicId"].(string); ok {
			ph.PublicID = id
		} else {
			ph.PublicID, _ = p["publicId"].(string)
		}
		switch n := p["size"].(type) {
		case float64:
			ph.Size = int64(n)
		case int64:
			ph.Size = n
		case int32:
			ph.Size = int64(n)
		case int:
			ph.Size = int64(n)
		}
		return ph
	case string:
		if p == "" {
			return nil
		}
		return &Photo{URL: p}
	default:
		return nil
	}
}

// Submission is one filled instance of a form.
type Submission struct {
	ID           string    `json:"_id"`
	FormConfigID string    `json:"formConfigId"`
	Data         Values    `json:"submissionData"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Entry is a submission enriched with its form and school, as listed to
// admins.
type Entry struct {
	Submission
	FormName   string `json:"formName"`
	SchoolName string `json:"schoolName"`
}

// Enrich joins submissions with their forms. Submissions whose form is not
// in forms get the form name "Unknown Form".
func Enrich(subs []Submission, forms []FormConfig) []Entry {
	byID := make(map[string]*FormConfig, len(forms))
	for i := range forms {
		byID[forms[i].ID] = &forms[i]
	}
	out := make([]Entry, len(subs))
	for i, s := range subs {
		e := Entry{Submission: s, FormName: "Unknown Form"}
		if f, ok := byID[s.FormConfigID]; ok {
			e.FormName = f.FormName
			e.SchoolName = f.SchoolName
		}
		out[i] = e
	}
	return out
}

// Package storage defines the repositories for forms, submissions and card
// settings.
//
// Implementations live in subpackages:
//   - memory: maps behind a mutex, for tests and development runs
//   - mongo: MongoDB collections formconfigs, formsubmissions and
//     idcardsettings
//
// Repositories return [ErrNotFound] and [ErrDuplicate] (possibly wrapped);
// callers test with errors.Is.
package storage

import (
	"context"
	"errors"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a form name is already taken.
	ErrDuplicate = errors.New("duplicate")
)

// Forms stores form configurations.
type Forms interface {
	// Create assigns an id and creation time and stores f.
	Create(ctx context.Context, f *forms.FormConfig) error
	Get(ctx context.Context, id string) (*forms.FormConfig, error)
	// List returns forms newest first. With activeOnly, inactive forms are
	// skipped.
	List(ctx context.Context, activeOnly bool) ([]forms.FormConfig, error)
	ListBySchool(ctx context.Context, school string) ([]forms.FormConfig, error)
	Update(ctx context.Context, f *forms.FormConfig) error
	Delete(ctx context.Context, id string) error
}

// Submissions stores form submissions.
type Submissions interface {
	// Create assigns an id and submission time and stores s.
	Create(ctx context.Context, s *forms.Submission) error
	Get(ctx context.Context, id string) (*forms.Submission, error)
	// ListByForms returns the submissions of the given forms, newest first.
	ListByForms(ctx context.Context, formIDs ...string) ([]forms.Submission, error)
	// ListByIDs returns the submissions with the given ids in the order
	// requested. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]forms.Submission, error)
	// CountByForm returns the number of submissions per form id.
	CountByForm(ctx context.Context) (map[string]int, error)
	UpdateData(ctx context.Context, id string, data forms.Values) (*forms.Submission, error)
	Delete(ctx context.Context, id string) error
	// DeleteByForm removes every submission of a form and returns how many
	// were removed.
	DeleteByForm(ctx context.Context, formID string) (int, error)
}

// Settings stores the single card settings document.
type Settings interface {
	// Load returns the settings, creating an empty document if none exists.
	Load(ctx context.Context) (*settings.Settings, error)
	Save(ctx context.Context, s *settings.Settings) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Forms() Forms
	Submissions() Submissions
	Settings() Settings
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

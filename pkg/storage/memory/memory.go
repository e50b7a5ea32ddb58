// Package memory is an in-process implementation of the storage
// repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// Store keeps all documents in maps guarded by one mutex.
type Store struct {
	mu          sync.RWMutex
	forms       map[string]forms.FormConfig
	submissions map[string]forms.Submission
	settings    *settings.Settings
	now         func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		forms:       make(map[string]forms.FormConfig),
		submissions: make(map[string]forms.Submission),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Forms() storage.Forms             { return formRepo{s} }
func (s *Store) Submissions() storage.Submissions { return submissionRepo{s} }
func (s *Store) Settings() storage.Settings       { return settingsRepo{s} }
func (s *Store) Ping(context.Context) error       { return nil }
func (s *Store) Close(context.Context) error      { return nil }

var _ storage.Store = (*Store)(nil)

// tick returns a timestamp strictly after every earlier one, so newest-first
// ordering is stable within a test.
func (s *Store) tick(last time.Time) time.Time {
	t := s.now()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	return t
}

type formRepo struct{ s *Store }

func (r formRepo) nameTaken(name, exceptID string) bool {
	for id, f := range r.s.forms {
		if id != exceptID && strings.EqualFold(f.FormName, name) {
			return true
		}
	}
	return false
}

func (r formRepo) latest() time.Time {
	var last time.Time
	for _, f := range r.s.forms {
		if f.CreatedAt.After(last) {
			last = f.CreatedAt
		}
	}
	return last
}

func (r formRepo) Create(ctx context.Context, f *forms.FormConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(f.FormName, "") {
		return fmt.Errorf("form %q: %w", f.FormName, storage.ErrDuplicate)
	}
	f.ID = uuid.NewString()
	f.CreatedAt = r.s.tick(r.latest())
	r.s.forms[f.ID] = cloneForm(*f)
	return nil
}

func (r formRepo) Get(ctx context.Context, id string) (*forms.FormConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.forms[id]
	if !ok {
		return nil, fmt.Errorf("form %s: %w", id, storage.ErrNotFound)
	}
	f = cloneForm(f)
	return &f, nil
}

func (r formRepo) List(ctx context.Context, activeOnly bool) ([]forms.FormConfig, error) {
	return r.filter(func(f forms.FormConfig) bool { return !activeOnly || f.IsActive }), nil
}

func (r formRepo) ListBySchool(ctx context.Context, school string) ([]forms.FormConfig, error) {
	return r.filter(func(f forms.FormConfig) bool { return f.SchoolName == school }), nil
}

func (r formRepo) filter(keep func(forms.FormConfig) bool) []forms.FormConfig {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []forms.FormConfig{}
	for _, f := range r.s.forms {
		if keep(f) {
			out = append(out, cloneForm(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r formRepo) Update(ctx context.Context, f *forms.FormConfig) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.forms[f.ID]
	if !ok {
		return fmt.Errorf("form %s: %w", f.ID, storage.ErrNotFound)
	}
	if r.nameTaken(f.FormName, f.ID) {
		return fmt.Errorf("form %q: %w", f.FormName, storage.ErrDuplicate)
	}
	f.CreatedAt = old.CreatedAt
	r.s.forms[f.ID] = cloneForm(*f)
	return nil
}

func (r formRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.forms[id]; !ok {
		return fmt.Errorf("form %s: %w", id, storage.ErrNotFound)
	}
	delete(r.s.forms, id)
	return nil
}

func cloneForm(f forms.FormConfig) forms.FormConfig {
	f.SelectedFields = append([]forms.SelectedField(nil), f.SelectedFields...)
	return f
}

type submissionRepo struct{ s *Store }

func (r submissionRepo) Create(ctx context.Context, sub *forms.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var last time.Time
	for _, x := range r.s.submissions {
		if x.SubmittedAt.After(last) {
			last = x.SubmittedAt
		}
	}
	sub.ID = uuid.NewString()
	sub.SubmittedAt = r.s.tick(last)
	r.s.submissions[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (r submissionRepo) Get(ctx context.Context, id string) (*forms.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, storage.ErrNotFound)
	}
	sub = cloneSubmission(sub)
	return &sub, nil
}

func (r submissionRepo) ListByForms(ctx context.Context, formIDs ...string) ([]forms.Submission, error) {
	want := make(map[string]bool, len(formIDs))
	for _, id := range formIDs {
		want[id] = true
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []forms.Submission{}
	for _, sub := range r.s.submissions {
		if want[sub.FormConfigID] {
			out = append(out, cloneSubmission(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r submissionRepo) ListByIDs(ctx context.Context, ids []string) ([]forms.Submission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]forms.Submission, 0, len(ids))
	for _, id := range ids {
		if sub, ok := r.s.submissions[id]; ok {
			out = append(out, cloneSubmission(sub))
		}
	}
	return out, nil
}

func (r submissionRepo) CountByForm(ctx context.Context) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int)
	for _, sub := range r.s.submissions {
		counts[sub.FormConfigID]++
	}
	return counts, nil
}

func (r submissionRepo) UpdateData(ctx context.Context, id string, data forms.Values) (*forms.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", id, storage.ErrNotFound)
	}
	sub.Data = data
	r.s.submissions[id] = cloneSubmission(sub)
	sub = cloneSubmission(sub)
	return &sub, nil
}

func (r submissionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[id]; !ok {
		return fmt.Errorf("submission %s: %w", id, storage.ErrNotFound)
	}
	delete(r.s.submissions, id)
	return nil
}

func (r submissionRepo) DeleteByForm(ctx context.Context, formID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, sub := range r.s.submissions {
		if sub.FormConfigID == formID {
			delete(r.s.submissions, id)
			n++
		}
	}
	return n, nil
}

func cloneSubmission(s forms.Submission) forms.Submission {
	data := make(forms.Values, len(s.Data))
	for k, v := range s.Data {
		data[k] = v
	}
	s.Data = data
	return s
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Load(ctx context.Context) (*settings.Settings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.settings == nil {
		r.s.settings = settings.New()
	}
	return cloneSettings(r.s.settings), nil
}

func (r settingsRepo) Save(ctx context.Context, st *settings.Settings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings = cloneSettings(st)
	return nil
}

func cloneSettings(st *settings.Settings) *settings.Settings {
	c := *st
	c.BackgroundImages = append([]settings.BackgroundImage{}, st.BackgroundImages...)
	return &c
}

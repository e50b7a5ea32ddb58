package io

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
	"github.com/matzehuels/cardsheet/pkg/storage/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	a := &forms.FormConfig{FormName: "Admissions", SchoolName: "Green Valley", IsActive: true,
		SelectedFields: []forms.SelectedField{{FieldName: forms.FieldName, IsRequired: true}, {FieldName: forms.FieldPhoto}}}
	b := &forms.FormConfig{FormName: "Sports", SchoolName: "Hill Top",
		SelectedFields: []forms.SelectedField{{FieldName: forms.FieldName}}}
	for _, f := range []*forms.FormConfig{a, b} {
		if err := st.Forms().Create(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
	subs := []forms.Submission{
		{FormConfigID: a.ID, Data: forms.Values{"name": "Asha", "photo": map[string]any{"url": "https://img.test/a.png"}}},
		{FormConfigID: a.ID, Data: forms.Values{"name": "Ravi"}},
		{FormConfigID: b.ID, Data: forms.Values{"name": "Meena"}},
	}
	for i := range subs {
		if err := st.Submissions().Create(ctx, &subs[i]); err != nil {
			t.Fatal(err)
		}
	}

	s := settings.New()
	s.AddBackground(settings.BackgroundImage{URL: "https://img.test/bg.png", Filename: "bg.png"})
	if err := st.Settings().Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := seed(t)

	d, err := Snapshot(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatal(err)
	}

	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	dst := memory.New()
	stats, err := Restore(ctx, dst, back)
	if err != nil {
		t.Fatal(err)
	}
	want := RestoreStats{Forms: 2, Submissions: 3, Settings: true}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	restored, err := dst.Forms().ListBySchool(ctx, "Green Valley")
	if err != nil || len(restored) != 1 {
		t.Fatalf("restored forms = %v, %v", restored, err)
	}
	subs, err := dst.Submissions().ListByForms(ctx, restored[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("restored %d submissions for Admissions", len(subs))
	}
	var photo *forms.Photo
	for _, s := range subs {
		if p := s.Data.Photo(); p != nil {
			photo = p
		}
	}
	if photo == nil || photo.URL != "https://img.test/a.png" {
		t.Errorf("photo = %+v", photo)
	}

	st, err := dst.Settings().Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.ActiveURL() != "https://img.test/bg.png" {
		t.Errorf("active background = %q", st.ActiveURL())
	}
}

func TestRestoreSkipsConflicts(t *testing.T) {
	ctx := context.Background()
	src := seed(t)
	d, err := Snapshot(ctx, src)
	if err != nil {
		t.Fatal(err)
	}

	// Restoring into the source clashes on every form name and keeps the
	// existing settings.
	stats, err := Restore(ctx, src, d)
	if err != nil {
		t.Fatal(err)
	}
	want := RestoreStats{SkippedForms: 2, SkippedSubmissions: 3}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	d.Forms = append(d.Forms, forms.FormConfig{ID: "broken", SchoolName: "No Name"})
	d.Submissions = append(d.Submissions, forms.Submission{ID: "orphan", FormConfigID: "missing"})
	stats, err = Restore(ctx, memory.New(), d)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Forms != 2 || stats.SkippedForms != 1 || stats.SkippedSubmissions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"malformed", `{"version":`, "decode"},
		{"no version", `{"forms":[]}`, "missing dump version"},
		{"newer", `{"version":99}`, "newer than supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")
	if _, err := ExportJSON(ctx, seed(t), path); err != nil {
		t.Fatal(err)
	}
	stats, err := ImportJSON(ctx, memory.New(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Forms != 2 || stats.Submissions != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if _, err := ImportJSON(ctx, memory.New(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

// Package storagetest runs the same behavioural checks against any
// storage.Store implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// Run exercises store. The store must be empty.
func Run(t *testing.T, store storage.Store) {
	t.Run("Forms", func(t *testing.T) { testForms(t, store) })
	t.Run("Submissions", func(t *testing.T) { testSubmissions(t, store) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, store) })
}

func newForm(name, school string, active bool) *forms.FormConfig {
	return &forms.FormConfig{
		FormName:   name,
		SchoolName: school,
		SelectedFields: []forms.SelectedField{
			{FieldName: forms.FieldName, IsRequired: true, Order: 1},
			{FieldName: forms.FieldPhoto, Order: 2},
		},
		IsActive: active,
	}
}

func testForms(t *testing.T, store storage.Store) {
	ctx := context.Background()
	repo := store.Forms()

	a := newForm("Alpha", "Green Valley", true)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Fatalf("Create did not assign id/createdAt: %+v", a)
	}
	b := newForm("Beta", "Hill Top", false)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Create(ctx, newForm("Alpha", "Elsewhere", true)); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Create duplicate = %v, want ErrDuplicate", err)
	}

	got, err := repo.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FormName != "Alpha" || len(got.SelectedFields) != 2 || !got.IsActive {
		t.Errorf("Get = %+v", got)
	}

	all, _ := repo.List(ctx, false)
	if len(all) != 2 || all[0].ID != b.ID {
		t.Errorf("List(all) = %d forms, first %q; want 2 newest first", len(all), firstID(all))
	}
	active, _ := repo.List(ctx, true)
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("List(active) = %v", active)
	}
	bySchool, _ := repo.ListBySchool(ctx, "Hill Top")
	if len(bySchool) != 1 || bySchool[0].ID != b.ID {
		t.Errorf("ListBySchool = %v", bySchool)
	}

	b.FormName = "Alpha"
	if err := repo.Update(ctx, b); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Update to taken name = %v, want ErrDuplicate", err)
	}
	b.FormName = "Beta 2"
	b.IsActive = true
	if err := repo.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.Get(ctx, b.ID)
	if got.FormName != "Beta 2" || !got.IsActive {
		t.Errorf("after Update = %+v", got)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get deleted = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete twice = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, a); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update deleted = %v, want ErrNotFound", err)
	}
	repo.Delete(ctx, b.ID)
}

func firstID(fs []forms.FormConfig) string {
	if len(fs) == 0 {
		return ""
	}
	return fs[0].ID
}

func testSubmissions(t *testing.T, store storage.Store) {
	ctx := context.Background()
	f1 := newForm("Sub One", "GV", true)
	f2 := newForm("Sub Two", "GV", true)
	store.Forms().Create(ctx, f1)
	store.Forms().Create(ctx, f2)

	repo := store.Submissions()
	var ids []string
	for i, formID := range []string{f1.ID, f1.ID, f2.ID} {
		s := &forms.Submission{FormConfigID: formID, Data: forms.Values{"name": []string{"A", "B", "C"}[i]}}
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if s.ID == "" || s.SubmittedAt.IsZero() {
			t.Fatalf("Create did not assign id/time: %+v", s)
		}
		ids = append(ids, s.ID)
	}

	got, err := repo.Get(ctx, ids[0])
	if err != nil || got.Data.String("name") != "A" {
		t.Errorf("Get = %+v, %v", got, err)
	}

	list, _ := repo.ListByForms(ctx, f1.ID)
	if len(list) != 2 || list[0].ID != ids[1] {
		t.Errorf("ListByForms(f1) = %d, want 2 newest first", len(list))
	}
	list, _ = repo.ListByForms(ctx, f1.ID, f2.ID)
	if len(list) != 3 {
		t.Errorf("ListByForms(f1, f2) = %d, want 3", len(list))
	}

	byIDs, _ := repo.ListByIDs(ctx, []string{ids[2], "missing", ids[0]})
	if len(byIDs) != 2 || byIDs[0].ID != ids[2] || byIDs[1].ID != ids[0] {
		t.Errorf("ListByIDs did not keep request order: %v", byIDs)
	}

	counts, _ := repo.CountByForm(ctx)
	if counts[f1.ID] != 2 || counts[f2.ID] != 1 {
		t.Errorf("CountByForm = %v", counts)
	}

	updated, err := repo.UpdateData(ctx, ids[0], forms.Values{"name": "Z", "class": "X"})
	if err != nil {
		t.Fatalf("UpdateData: %v", err)
	}
	if updated.Data.String("name") != "Z" || updated.FormConfigID != f1.ID {
		t.Errorf("UpdateData = %+v", updated)
	}
	if _, err := repo.UpdateData(ctx, "missing", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateData missing = %v", err)
	}

	if err := repo.Delete(ctx, ids[2]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, ids[2]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete twice = %v", err)
	}

	n, err := repo.DeleteByForm(ctx, f1.ID)
	if err != nil || n != 2 {
		t.Errorf("DeleteByForm = %d, %v; want 2", n, err)
	}
	counts, _ = repo.CountByForm(ctx)
	if counts[f1.ID] != 0 {
		t.Errorf("counts after DeleteByForm = %v", counts)
	}
}

func testSettings(t *testing.T, store storage.Store) {
	ctx := context.Background()
	repo := store.Settings()

	st, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.BackgroundImages) != 0 || st.Active() != nil {
		t.Fatalf("fresh settings = %+v", st)
	}

	img := st.AddBackground(settings.BackgroundImage{URL: "https://img/bg.png", PublicID: "bg"})
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st, err = repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active := st.Active(); active == nil || active.ID != img.ID || active.URL != img.URL {
		t.Errorf("reloaded active = %+v, want %+v", active, img)
	}
}

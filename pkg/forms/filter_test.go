package forms

import (
	"reflect"
	"testing"
	"time"
)

func entry(id, school, name, class, section string) Entry {
	return Entry{
		Submission: Submission{ID: id, Data: Values{"name": name, "class": class, "section": section}},
		SchoolName: school,
	}
}

func TestFilterApply(t *testing.T) {
	entries := []Entry{
		entry("1", "Green Valley", "Asha Rao", "X", "A"),
		entry("2", "Green Valley", "Ravi Kumar", "IX", "B"),
		entry("3", "Hill Top", "Meera Shah", "X", "B"),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"1", "2", "3"}},
		{"school", Filter{School: "green"}, []string{"1", "2"}},
		{"class substring", Filter{Class: "x"}, []string{"1", "2", "3"}},
		{"name", Filter{Name: "SHAH"}, []string{"3"}},
		{"combined", Filter{School: "valley", Section: "b"}, []string{"2"}},
		{"none", Filter{Name: "zed"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range tt.filter.Apply(entries) {
				got = append(got, e.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupBySchool(t *testing.T) {
	forms := []FormConfig{
		{ID: "a", SchoolName: "Green Valley"},
		{ID: "b", SchoolName: "Hill Top"},
		{ID: "c", SchoolName: "Green Valley"},
	}
	schools := GroupBySchool(forms, map[string]int{"a": 3, "b": 1, "c": 2})

	if len(schools) != 2 {
		t.Fatalf("len = %d, want 2", len(schools))
	}
	if schools[0].SchoolName != "Green Valley" || schools[0].TotalSubmissions != 5 || len(schools[0].Forms) != 2 {
		t.Errorf("schools[0] = %+v", schools[0])
	}
	if schools[1].SchoolName != "Hill Top" || schools[1].TotalSubmissions != 1 {
		t.Errorf("schools[1] = %+v", schools[1])
	}
}

func TestSchoolFields(t *testing.T) {
	forms := []FormConfig{
		{SchoolName: "GV", SelectedFields: []SelectedField{{FieldName: FieldName, Order: 1}, {FieldName: FieldPhoto, Order: 2}}},
		{SchoolName: "GV", SelectedFields: []SelectedField{{FieldName: FieldClass, Order: 1}, {FieldName: FieldName, Order: 2}}},
	}
	got := SchoolFields(forms)["GV"]
	want := []FieldKey{FieldName, FieldPhoto, FieldClass}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SchoolFields = %v, want %v", got, want)
	}
}

func TestEnrichAndSort(t *testing.T) {
	now := time.Now()
	subs := []Submission{
		{ID: "old", FormConfigID: "a", SubmittedAt: now.Add(-time.Hour)},
		{ID: "new", FormConfigID: "gone", SubmittedAt: now},
	}
	entries := Enrich(subs, []FormConfig{{ID: "a", FormName: "Intake", SchoolName: "GV"}})
	if entries[0].FormName != "Intake" || entries[0].SchoolName != "GV" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].FormName != "Unknown Form" {
		t.Errorf("entries[1].FormName = %q", entries[1].FormName)
	}

	SortNewestFirst(entries)
	if entries[0].ID != "new" {
		t.Errorf("SortNewestFirst first = %s", entries[0].ID)
	}
}

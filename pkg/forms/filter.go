package forms

import (
	"sort"
	"strings"
)

// Filter narrows a list of entries. Empty fields match everything; set fields
// match by case-insensitive substring.
type Filter struct {
	School  string `json:"schoolName,omitempty"`
	Class   string `json:"className,omitempty"`
	Name    string `json:"studentName,omitempty"`
	Section string `json:"section,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	return contains(e.SchoolName, f.School) &&
		contains(e.Data.String(string(FieldClass)), f.Class) &&
		contains(e.Data.String(string(FieldName)), f.Name) &&
		contains(e.Data.String(string(FieldSection)), f.Section)
}

// Apply returns the entries that pass the filter, in their original order.
func (f Filter) Apply(entries []Entry) []Entry {
	if f.IsZero() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

func contains(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// School summarizes the forms of one school.
type School struct {
	SchoolName       string       `json:"schoolName"`
	Forms            []FormConfig `json:"forms"`
	TotalSubmissions int          `json:"totalSubmissions"`
}

// GroupBySchool groups forms by school name. counts maps form id to its
// number of submissions; a school's total is the sum over its forms. Schools
// are returned in the order their first form appears.
func GroupBySchool(forms []FormConfig, counts map[string]int) []School {
	idx := make(map[string]int)
	var out []School
	for _, f := range forms {
		i, ok := idx[f.SchoolName]
		if !ok {
			i = len(out)
			idx[f.SchoolName] = i
			out = append(out, School{SchoolName: f.SchoolName})
		}
		out[i].Forms = append(out[i].Forms, f)
		out[i].TotalSubmissions += counts[f.ID]
	}
	return out
}

// SchoolFields returns the union of field keys selected by each school's
// forms, keyed by school name. A card uses its school's fields to decide
// what to print.
func SchoolFields(forms []FormConfig) map[string][]FieldKey {
	seen := make(map[string]map[FieldKey]bool)
	out := make(map[string][]FieldKey)
	for i := range forms {
		f := &forms[i]
		if seen[f.SchoolName] == nil {
			seen[f.SchoolName] = make(map[FieldKey]bool)
		}
		for _, k := range f.FieldKeys() {
			if !seen[f.SchoolName][k] {
				seen[f.SchoolName][k] = true
				out[f.SchoolName] = append(out[f.SchoolName], k)
			}
		}
	}
	return out
}

// SortNewestFirst orders entries by submission time, newest first.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SubmittedAt.After(entries[j].SubmittedAt)
	})
}

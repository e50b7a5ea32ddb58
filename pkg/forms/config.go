package forms

import (
	"sort"
	"strings"
	"time"
)

// SelectedField is a catalog field chosen for a form.
type SelectedField struct {
	FieldName  FieldKey `json:"fieldName" validate:"required,catalogfield"`
	IsRequired bool     `json:"isRequired"`
	Order      int      `json:"order"`
}

// FormConfig is an admin-defined form for one school.
type FormConfig struct {
	ID             string          `json:"_id"`
	FormName       string          `json:"formName" validate:"required,max=200"`
	SchoolName     string          `json:"schoolName" validate:"required,max=200"`
	SchoolAddress  string          `json:"schoolAddress" validate:"max=500"`
	SelectedFields []SelectedField `json:"selectedFields" validate:"dive"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Normalize trims names and fills in defaults for a new or updated form.
func (f *FormConfig) Normalize() {
	f.FormName = strings.TrimSpace(f.FormName)
	f.SchoolName = strings.TrimSpace(f.SchoolName)
	f.SchoolAddress = strings.TrimSpace(f.SchoolAddress)
	for i := range f.SelectedFields {
		f.SelectedFields[i].FieldName = FieldKey(strings.TrimSpace(string(f.SelectedFields[i].FieldName)))
	}
}

// Has reports whether key is one of the form's selected fields.
func (f *FormConfig) Has(key FieldKey) bool {
	for _, sf := range f.SelectedFields {
		if sf.FieldName == key {
			return true
		}
	}
	return false
}

// FieldKeys returns the selected field keys in display order.
func (f *FormConfig) FieldKeys() []FieldKey {
	sorted := f.sortedFields()
	keys := make([]FieldKey, len(sorted))
	for i, sf := range sorted {
		keys[i] = sf.FieldName
	}
	return keys
}

func (f *FormConfig) sortedFields() []SelectedField {
	sorted := make([]SelectedField, len(f.SelectedFields))
	copy(sorted, f.SelectedFields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// StructureField is a selected field joined with its catalog definition.
type StructureField struct {
	FieldDefinition
	FieldName  FieldKey `json:"fieldName"`
	IsRequired bool     `json:"isRequired"`
}

// Structure is what the public form renderer needs.
type Structure struct {
	FormName      string           `json:"formName"`
	SchoolName    string           `json:"schoolName"`
	SchoolAddress string           `json:"schoolAddress,omitempty"`
	Fields        []StructureField `json:"fields"`
}

// Structure returns the form's fields sorted by order and joined with the
// catalog. Fields no longer in the catalog are skipped.
func (f *FormConfig) Structure() Structure {
	s := Structure{
		FormName:      f.FormName,
		SchoolName:    f.SchoolName,
		SchoolAddress: f.SchoolAddress,
		Fields:        []StructureField{},
	}
	for _, sf := range f.sortedFields() {
		def, ok := Catalog[sf.FieldName]
		if !ok {
			continue
		}
		s.Fields = append(s.Fields, StructureField{
			FieldDefinition: def,
			FieldName:       sf.FieldName,
			IsRequired:      sf.IsRequired,
		})
	}
	return s
}

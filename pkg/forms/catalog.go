package forms

import (
	"sort"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// FieldKey identifies a field in the catalog.
type FieldKey string

// Catalog keys.
const (
	FieldName            FieldKey = "name"
	FieldFatherName      FieldKey = "fatherName"
	FieldMotherName      FieldKey = "motherName"
	FieldAddress         FieldKey = "address"
	FieldDateOfBirth     FieldKey = "dateOfBirth"
	FieldMobileNumber    FieldKey = "mobileNumber"
	FieldAadhaarNumber   FieldKey = "aadhaarNumber"
	FieldBloodGroup      FieldKey = "bloodGroup"
	FieldClass           FieldKey = "class"
	FieldSection         FieldKey = "section"
	FieldRollNumber      FieldKey = "roleNumber" // stored key predates the "roll" spelling
	FieldAdmissionNumber FieldKey = "admissionNumber"
	FieldStream          FieldKey = "stream"
	FieldSession         FieldKey = "session"
	FieldPhoto           FieldKey = "photo"
	FieldEmail           FieldKey = "email"
)

// InputKind is how a field is entered.
type InputKind string

// Input kinds.
const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputDate     InputKind = "date"
	InputTel      InputKind = "tel"
	InputSelect   InputKind = "select"
	InputFile     InputKind = "file"
	InputEmail    InputKind = "email"
)

// ValidationKind is how a field value is checked.
type ValidationKind string

// Validation kinds.
const (
	ValidateString  ValidationKind = "string"
	ValidateDate    ValidationKind = "date"
	ValidatePhone   ValidationKind = "phone"
	ValidateAadhaar ValidationKind = "aadhaar"
	ValidateSelect  ValidationKind = "select"
	ValidateImage   ValidationKind = "image"
	ValidateEmail   ValidationKind = "email"
)

// FieldDefinition describes one catalog field.
type FieldDefinition struct {
	Key         FieldKey       `json:"-"`
	Label       string         `json:"label"`
	Type        InputKind      `json:"type"`
	Validation  ValidationKind `json:"validation"`
	Options     []string       `json:"options,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Accept      string         `json:"accept,omitempty"`
}

// Catalog is the fixed set of fields a form can be built from.
var Catalog = map[FieldKey]FieldDefinition{
	FieldName:          {Key: FieldName, Label: "Name", Type: InputText, Validation: ValidateString},
	FieldFatherName:    {Key: FieldFatherName, Label: "Father's Name", Type: InputText, Validation: ValidateString},
	FieldMotherName:    {Key: FieldMotherName, Label: "Mother's Name", Type: InputText, Validation: ValidateString},
	FieldAddress:       {Key: FieldAddress, Label: "Address", Type: InputTextarea, Validation: ValidateString},
	FieldDateOfBirth:   {Key: FieldDateOfBirth, Label: "Date of Birth", Type: InputDate, Validation: ValidateDate},
	FieldMobileNumber:  {Key: FieldMobileNumber, Label: "Mobile Number", Type: InputTel, Validation: ValidatePhone},
	FieldAadhaarNumber: {Key: FieldAadhaarNumber, Label: "Aadhaar Number", Type: InputText, Validation: ValidateAadhaar},
	FieldBloodGroup: {
		Key: FieldBloodGroup, Label: "Blood Group", Type: InputSelect, Validation: ValidateSelect,
		Options: []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
	},
	FieldClass:           {Key: FieldClass, Label: "Class", Type: InputText, Validation: ValidateString},
	FieldSection:         {Key: FieldSection, Label: "Section", Type: InputText, Validation: ValidateString},
	FieldRollNumber:      {Key: FieldRollNumber, Label: "Roll Number", Type: InputText, Validation: ValidateString},
	FieldAdmissionNumber: {Key: FieldAdmissionNumber, Label: "Admission Number", Type: InputText, Validation: ValidateString},
	FieldStream: {
		Key: FieldStream, Label: "Stream", Type: InputSelect, Validation: ValidateSelect,
		Options: []string{"Arts", "Science", "Commerce"},
	},
	FieldSession: {Key: FieldSession, Label: "Session", Type: InputText, Validation: ValidateString, Placeholder: "e.g., 2025-27"},
	FieldPhoto: {
		Key: FieldPhoto, Label: "Photo", Type: InputFile, Validation: ValidateImage,
		Accept: "image/*", Placeholder: "Upload your photo (JPG, PNG)",
	},
	FieldEmail: {Key: FieldEmail, Label: "Email", Type: InputEmail, Validation: ValidateEmail},
}

// Lookup returns the definition for key or an INVALID_FIELD error.
func Lookup(key FieldKey) (FieldDefinition, error) {
	def, ok := Catalog[key]
	if !ok {
		return FieldDefinition{}, apperr.New(apperr.ErrCodeInvalidField, "unknown field: %q", key)
	}
	return def, nil
}

// Known reports whether key is in the catalog.
func Known(key FieldKey) bool {
	_, ok := Catalog[key]
	return ok
}

// Keys returns all catalog keys in a stable order.
func Keys() []FieldKey {
	keys := make([]FieldKey, 0, len(Catalog))
	for k := range Catalog {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// CatalogJSON returns the catalog keyed by field name, as served to clients.
func CatalogJSON() map[string]FieldDefinition {
	out := make(map[string]FieldDefinition, len(Catalog))
	for k, def := range Catalog {
		out[string(k)] = def
	}
	return out
}

// HasOption reports whether value is one of def's select options.
func (def FieldDefinition) HasOption(value string) bool {
	for _, o := range def.Options {
		if o == value {
			return true
		}
	}
	return false
}

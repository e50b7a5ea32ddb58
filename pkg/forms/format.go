package forms

import (
	"strings"
	"time"
)

// DisplayDateLayout is how dates are printed on cards and listings.
const DisplayDateLayout = "02/01/2006"

// legacyRollKey is accepted alongside [FieldRollNumber] when reading values.
const legacyRollKey = "rollNumber"

var shortLabels = map[FieldKey]string{
	FieldName:            "Name",
	FieldFatherName:      "Father's Name",
	FieldMotherName:      "Mother's Name",
	FieldClass:           "Class",
	FieldSection:         "Section",
	FieldRollNumber:      "Roll No",
	FieldAdmissionNumber: "Adm No",
	FieldDateOfBirth:     "DOB",
	FieldBloodGroup:      "Blood Group",
	FieldMobileNumber:    "Mobile",
	FieldAddress:         "Address",
	FieldAadhaarNumber:   "Aadhaar",
	FieldStream:          "Stream",
	FieldSession:         "Session",
	FieldEmail:           "Email",
	FieldPhoto:           "Photo",
}

var detailLabels = map[FieldKey]string{
	FieldDateOfBirth:   "Date of Birth",
	FieldMobileNumber:  "Contact No.",
	FieldAadhaarNumber: "UID No.",
}

// Label returns the short label used for key in listings and exports.
// Unknown keys are returned unchanged.
func Label(key FieldKey) string {
	if l, ok := shortLabels[key]; ok {
		return l
	}
	return string(key)
}

// DetailLabel returns the label printed in a card's detail list.
func DetailLabel(key FieldKey) string {
	if l, ok := detailLabels[key]; ok {
		return l
	}
	if def, ok := Catalog[key]; ok {
		return def.Label
	}
	return string(key)
}

// DisplayValue returns the printable value of key in data, or "".
func DisplayValue(data Values, key FieldKey) string {
	switch key {
	case FieldRollNumber:
		if v := data.String(string(FieldRollNumber)); v != "" {
			return v
		}
		return data.String(legacyRollKey)
	case FieldDateOfBirth:
		return FormatDate(data[string(FieldDateOfBirth)])
	case FieldPhoto:
		return PhotoURL(data)
	default:
		return data.String(string(key))
	}
}

// FormatDate renders a stored date as dd/mm/yyyy. Values that do not parse
// are returned as given.
func FormatDate(raw any) string {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(DisplayDateLayout)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DisplayDateLayout)
			}
		}
		return s
	default:
		return ""
	}
}

// PhotoURL returns the URL of the submission photo, or "" when there is none.
func PhotoURL(data Values) string {
	if p := data.Photo(); p != nil {
		return p.URL
	}
	return ""
}

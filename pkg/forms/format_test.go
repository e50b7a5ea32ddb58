package forms

import (
	"testing"
	"time"
)

func TestLabel(t *testing.T) {
	tests := map[FieldKey]string{
		FieldRollNumber:      "Roll No",
		FieldAdmissionNumber: "Adm No",
		FieldDateOfBirth:     "DOB",
		FieldMobileNumber:    "Mobile",
		FieldAadhaarNumber:   "Aadhaar",
		FieldFatherName:      "Father's Name",
		"custom":             "custom",
	}
	for key, want := range tests {
		if got := Label(key); got != want {
			t.Errorf("Label(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestDetailLabel(t *testing.T) {
	if got := DetailLabel(FieldAadhaarNumber); got != "UID No." {
		t.Errorf("DetailLabel(aadhaar) = %q", got)
	}
	if got := DetailLabel(FieldMotherName); got != "Mother's Name" {
		t.Errorf("DetailLabel(motherName) = %q", got)
	}
}

func TestDisplayValue(t *testing.T) {
	data := Values{
		"name":        " Asha ",
		"rollNumber":  "17",
		"dateOfBirth": "2012-04-30",
		"photo":       map[string]any{"url": "https://img/a.jpg"},
	}
	tests := []struct {
		key  FieldKey
		want string
	}{
		{FieldName, "Asha"},
		{FieldRollNumber, "17"},
		{FieldDateOfBirth, "30/04/2012"},
		{FieldPhoto, "https://img/a.jpg"},
		{FieldClass, ""},
	}
	for _, tt := range tests {
		if got := DisplayValue(data, tt.key); got != tt.want {
			t.Errorf("DisplayValue(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}

	data["roleNumber"] = "9"
	if got := DisplayValue(data, FieldRollNumber); got != "9" {
		t.Errorf("roleNumber should win over rollNumber, got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2012-04-30", "30/04/2012"},
		{"2012-04-30T00:00:00Z", "30/04/2012"},
		{time.Date(2010, 1, 2, 0, 0, 0, 0, time.UTC), "02/01/2010"},
		{"sometime", "sometime"},
		{"", ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhotoShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{"pointer", &Photo{URL: "a"}, "a"},
		{"value", Photo{URL: "b"}, "b"},
		{"map", map[string]any{"url": "c", "size": 12.0, "cloudinaryPublicId": "id"}, "c"},
		{"string", "d", "d"},
		{"empty map", map[string]any{}, ""},
		{"missing", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhotoURL(Values{"photo": tt.raw}); got != tt.want {
				t.Errorf("PhotoURL = %q, want %q", got, tt.want)
			}
		})
	}

	p := Values{"photo": map[string]any{"url": "c", "size": 12.0, "cloudinaryPublicId": "id"}}.Photo()
	if p.Size != 12 || p.PublicID != "id" {
		t.Errorf("Photo() = %+v", p)
	}
}

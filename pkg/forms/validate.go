package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	catalogFieldTag = "catalogfield"

	phoneRegex   = regexp.MustCompile(`^(\+?91)?[0-9]{10}$`)
	aadhaarRegex = regexp.MustCompile(`^[0-9]{12}$`)
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Validator returns the shared validator with the catalog rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use JSON tag names for errors instead of Go struct names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		err := validate.RegisterValidation(catalogFieldTag, func(fl validator.FieldLevel) bool {
			return Known(FieldKey(fl.Field().String()))
		})
		if err != nil {
			panic(fmt.Sprintf("forms: register %s validation: %v", catalogFieldTag, err))
		}
	})
	return validate
}

// Validate checks the form against the struct rules and the catalog.
func (f *FormConfig) Validate() error {
	var details []string
	if err := Validator().Struct(f); err != nil {
		details = append(details, fieldErrors(err)...)
	}

	seen := make(map[FieldKey]bool, len(f.SelectedFields))
	for _, sf := range f.SelectedFields {
		if seen[sf.FieldName] {
			details = append(details, fmt.Sprintf("%s is selected more than once", sf.FieldName))
		}
		seen[sf.FieldName] = true
	}

	if len(details) > 0 {
		return apperr.Validation(details)
	}
	return nil
}

// fieldErrors turns validator errors into readable messages.
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case catalogFieldTag:
			out = append(out, fmt.Sprintf("unknown field: %q", fe.Value()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return out
}

// ValidateSubmission checks values against the form. It returns the values
// restricted to the form's fields, or a VALIDATION_FAILED error listing every
// problem.
func ValidateSubmission(f *FormConfig, values Values) (Values, error) {
	clean := make(Values, len(f.SelectedFields))
	var details []string

	for _, sf := range f.sortedFields() {
		def, ok := Catalog[sf.FieldName]
		if !ok {
			continue
		}
		key := string(sf.FieldName)
		raw, present := values[key]

		if !present || isEmpty(raw) {
			if sf.IsRequired {
				details = append(details, fmt.Sprintf("%s is required", key))
			}
			continue
		}

		if msg := checkValue(def, raw); msg != "" {
			details = append(details, fmt.Sprintf("%s %s", key, msg))
			continue
		}
		if s, ok := raw.(string); ok {
			raw = strings.TrimSpace(s)
		}
		if def.Validation == ValidateImage {
			raw = photoFrom(raw)
		}
		clean[key] = raw
	}

	if len(details) > 0 {
		return nil, apperr.Validation(details)
	}
	return clean, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case *Photo:
		return x == nil || x.URL == ""
	default:
		return false
	}
}

// checkValue returns an error message fragment, or "" when raw is valid.
func checkValue(def FieldDefinition, raw any) string {
	if def.Validation == ValidateImage {
		if photoFrom(raw) == nil {
			return "must be an uploaded image"
		}
		return ""
	}

	s, ok := raw.(string)
	if !ok {
		return "must be text"
	}
	s = strings.TrimSpace(s)

	switch def.Validation {
	case ValidatePhone:
		if !phoneRegex.MatchString(stripSeparators(s)) {
			return "must be a valid 10 digit mobile number"
		}
	case ValidateAadhaar:
		if !aadhaarRegex.MatchString(stripSeparators(s)) {
			return "must be a 12 digit Aadhaar number"
		}
	case ValidateEmail:
		if Validator().Var(s, "email") != nil {
			return "must be a valid email address"
		}
	case ValidateDate:
		if _, err := time.Parse(DateLayout, s); err != nil {
			return "must be a date (YYYY-MM-DD)"
		}
	case ValidateSelect:
		if !def.HasOption(s) {
			return fmt.Sprintf("must be one of %s", strings.Join(def.Options, ", "))
		}
	case ValidateString:
		if len(s) > 500 {
			return "must be at most 500 characters"
		}
	}
	return ""
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

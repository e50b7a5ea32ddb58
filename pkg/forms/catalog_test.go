package forms

import (
	"testing"

	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

func TestLookup(t *testing.T) {
	def, err := Lookup(FieldBloodGroup)
	if err != nil {
		t.Fatalf("Lookup(bloodGroup): %v", err)
	}
	if def.Type != InputSelect || len(def.Options) != 8 {
		t.Errorf("bloodGroup = %+v, want select with 8 options", def)
	}

	if _, err := Lookup("favouriteColour"); !apperr.Is(err, apperr.ErrCodeInvalidField) {
		t.Errorf("Lookup(unknown) error = %v, want INVALID_FIELD", err)
	}
}

func TestCatalogComplete(t *testing.T) {
	if len(Catalog) != 16 {
		t.Errorf("len(Catalog) = %d, want 16", len(Catalog))
	}
	for key, def := range Catalog {
		if def.Key != key {
			t.Errorf("Catalog[%s].Key = %s", key, def.Key)
		}
		if def.Label == "" || def.Type == "" || def.Validation == "" {
			t.Errorf("Catalog[%s] incomplete: %+v", key, def)
		}
		if def.Validation == ValidateSelect && len(def.Options) == 0 {
			t.Errorf("Catalog[%s] is a select without options", key)
		}
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	if len(keys) != len(Catalog) {
		t.Fatalf("len(Keys()) = %d, want %d", len(keys), len(Catalog))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("Keys() not sorted at %d: %s >= %s", i, keys[i-1], keys[i])
		}
	}
}

func TestHasOption(t *testing.T) {
	def := Catalog[FieldStream]
	if !def.HasOption("Science") {
		t.Error("stream should accept Science")
	}
	if def.HasOption("science") {
		t.Error("options are case-sensitive")
	}
}

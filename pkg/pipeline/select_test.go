package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
	"github.com/matzehuels/cardsheet/pkg/storage/memory"
)

func seedStore(t *testing.T) (*memory.Store, []string) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	schools := []struct {
		form, school, address string
		fields                []forms.FieldKey
	}{
		{"Hill Top 2024", "Hill Top", "1 Hill Road", []forms.FieldKey{forms.FieldName, forms.FieldClass}},
		{"Riverside 2024", "Riverside", "", []forms.FieldKey{forms.FieldName, forms.FieldSection}},
	}
	var ids []string
	for _, s := range schools {
		f := &forms.FormConfig{FormName: s.form, SchoolName: s.school, SchoolAddress: s.address, IsActive: true}
		for i, key := range s.fields {
			f.SelectedFields = append(f.SelectedFields, forms.SelectedField{FieldName: key, Order: i})
		}
		if err := store.Forms().Create(ctx, f); err != nil {
			t.Fatalf("create form: %v", err)
		}
		for _, name := range []string{"Asha", "Ravi"} {
			sub := &forms.Submission{FormConfigID: f.ID, Data: forms.Values{"name": name, "class": "5", "section": "B"}}
			if err := store.Submissions().Create(ctx, sub); err != nil {
				t.Fatalf("create submission: %v", err)
			}
			ids = append(ids, sub.ID)
		}
	}
	return store, ids
}

func TestLoadCards(t *testing.T) {
	ctx := context.Background()
	store, ids := seedStore(t)

	st := settings.New()
	st.AddBackground(settings.BackgroundImage{ID: "bg1", URL: "https://img.example/bg.png"})
	if err := store.Settings().Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		sel  Selection
		want int
	}{
		{"all", Selection{}, 4},
		{"by ids", Selection{SubmissionIDs: ids[1:3]}, 2},
		{"school filter", Selection{Filter: forms.Filter{School: "hill"}}, 2},
		{"ids and filter", Selection{SubmissionIDs: ids[1:3], Filter: forms.Filter{School: "River"}}, 1},
		{"student filter", Selection{Filter: forms.Filter{Name: "asha"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := LoadCards(ctx, store, tt.sel)
			if err != nil {
				t.Fatalf("LoadCards: %v", err)
			}
			if len(cards) != tt.want {
				t.Fatalf("got %d cards, want %d", len(cards), tt.want)
			}
			for _, c := range cards {
				if c.BackgroundURL != "https://img.example/bg.png" {
					t.Errorf("card %s background = %q", c.ID, c.BackgroundURL)
				}
				if len(c.Fields) == 0 {
					t.Errorf("card %s has no fields", c.ID)
				}
			}
		})
	}
}

func TestLoadCardsKeepsRequestedOrder(t *testing.T) {
	store, ids := seedStore(t)
	order := []string{ids[3], ids[0], ids[2]}

	cards, err := LoadCards(context.Background(), store, Selection{SubmissionIDs: order})
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range cards {
		if c.ID != order[i] {
			t.Errorf("cards[%d] = %s, want %s", i, c.ID, order[i])
		}
	}
	if cards[1].SchoolAddress != "1 Hill Road" || cards[1].SchoolName != "Hill Top" {
		t.Errorf("hill top card = %+v", cards[1])
	}
}

func TestLoadCardsEmpty(t *testing.T) {
	store, _ := seedStore(t)

	tests := []struct {
		name string
		sel  Selection
	}{
		{"unknown ids", Selection{SubmissionIDs: []string{"missing"}}},
		{"no match", Selection{Filter: forms.Filter{School: "Nowhere"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCards(context.Background(), store, tt.sel)
			if !errors.Is(err, compose.ErrEmptyInput) {
				t.Errorf("err = %v, want ErrEmptyInput", err)
			}
		})
	}

	if _, err := LoadCards(context.Background(), memory.New(), Selection{}); !errors.Is(err, compose.ErrEmptyInput) {
		t.Errorf("empty store: err = %v", err)
	}
}

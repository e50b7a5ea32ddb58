package pipeline

import (
	"context"

	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/render/card"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// Selection picks the submissions to export. With SubmissionIDs set, those
// submissions are exported in the given order; otherwise every submission
// is. Filter narrows either list.
type Selection struct {
	SubmissionIDs []string     `json:"submissionIds,omitempty"`
	Filter        forms.Filter `json:"filter"`
}

// LoadCards resolves sel against store. Each card carries the fields its
// school selected and the active background. An empty result is
// [compose.ErrEmptyInput].
func LoadCards(ctx context.Context, store storage.Store, sel Selection) ([]card.Card, error) {
	all, err := store.Forms().List(ctx, false)
	if err != nil {
		return nil, err
	}

	var subs []forms.Submission
	if len(sel.SubmissionIDs) > 0 {
		subs, err = store.Submissions().ListByIDs(ctx, sel.SubmissionIDs)
	} else if len(all) > 0 {
		ids := make([]string, len(all))
		for i, f := range all {
			ids[i] = f.ID
		}
		subs, err = store.Submissions().ListByForms(ctx, ids...)
	}
	if err != nil {
		return nil, err
	}
	entries := sel.Filter.Apply(forms.Enrich(subs, all))
	if len(entries) == 0 {
		return nil, compose.ErrEmptyInput
	}

	st, err := store.Settings().Load(ctx)
	if err != nil {
		return nil, err
	}
	background := st.ActiveURL()
	fields := forms.SchoolFields(all)
	byID := make(map[string]*forms.FormConfig, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	cards := make([]card.Card, len(entries))
	for i, e := range entries {
		cards[i] = card.FromEntry(e, fields[e.SchoolName], byID[e.FormConfigID], background)
	}
	return cards, nil
}

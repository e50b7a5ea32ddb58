package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/settings"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// FormatVersion is the dump format written by this package.
const FormatVersion = 1

// Dump is a copy of all stored documents.
type Dump struct {
	Version     int                `json:"version"`
	ExportedAt  time.Time          `json:"exportedAt"`
	Forms       []forms.FormConfig `json:"forms"`
	Submissions []forms.Submission `json:"submissions"`
	Settings    *settings.Settings `json:"settings,omitempty"`
}

// Snapshot reads every document from store.
func Snapshot(ctx context.Context, store storage.Store) (*Dump, error) {
	all, err := store.Forms().List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	d := &Dump{
		Version:     FormatVersion,
		ExportedAt:  time.Now().UTC(),
		Forms:       nonNil(all),
		Submissions: []forms.Submission{},
	}
	if len(all) > 0 {
		ids := make([]string, len(all))
		for i, f := range all {
			ids[i] = f.ID
		}
		subs, err := store.Submissions().ListByForms(ctx, ids...)
		if err != nil {
			return nil, fmt.Errorf("list submissions: %w", err)
		}
		d.Submissions = nonNil(subs)
	}
	if d.Settings, err = store.Settings().Load(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return d, nil
}

// WriteJSON encodes d as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(d *Dump, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON snapshots store into a JSON file at path.
func ExportJSON(ctx context.Context, store storage.Store, path string) (*Dump, error) {
	d, err := Snapshot(ctx, store)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(d, f); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return d, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

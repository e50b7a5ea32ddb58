package io

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// RestoreStats counts what [Restore] did.
type RestoreStats struct {
	Forms              int  `json:"forms"`
	Submissions        int  `json:"submissions"`
	SkippedForms       int  `json:"skippedForms"`
	SkippedSubmissions int  `json:"skippedSubmissions"`
	Settings           bool `json:"settings"`
}

// ReadJSON decodes a dump from r.
//
// ReadJSON returns an error if the JSON is malformed or the dump was written
// by a newer format version. It does not close r.
func ReadJSON(r io.Reader) (*Dump, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if d.Version == 0 {
		return nil, errors.New("decode: missing dump version")
	}
	if d.Version > FormatVersion {
		return nil, fmt.Errorf("decode: dump version %d is newer than supported version %d", d.Version, FormatVersion)
	}
	return &d, nil
}

// Restore writes the documents of d into store. See the package
// documentation for how ids and conflicts are handled.
func Restore(ctx context.Context, store storage.Store, d *Dump) (RestoreStats, error) {
	var stats RestoreStats

	newIDs := make(map[string]string, len(d.Forms))
	for _, f := range d.Forms {
		oldID := f.ID
		f.ID = ""
		f.Normalize()
		if err := f.Validate(); err != nil {
			stats.SkippedForms++
			continue
		}
		err := store.Forms().Create(ctx, &f)
		if errors.Is(err, storage.ErrDuplicate) {
			stats.SkippedForms++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("form %s: %w", oldID, err)
		}
		newIDs[oldID] = f.ID
		stats.Forms++
	}

	for _, s := range d.Submissions {
		formID, ok := newIDs[s.FormConfigID]
		if !ok {
			stats.SkippedSubmissions++
			continue
		}
		sub := forms.Submission{FormConfigID: formID, Data: s.Data}
		if err := store.Submissions().Create(ctx, &sub); err != nil {
			return stats, fmt.Errorf("submission %s: %w", s.ID, err)
		}
		stats.Submissions++
	}

	if d.Settings != nil && len(d.Settings.BackgroundImages) > 0 {
		current, err := store.Settings().Load(ctx)
		if err != nil {
			return stats, fmt.Errorf("load settings: %w", err)
		}
		if len(current.BackgroundImages) == 0 {
			if err := store.Settings().Save(ctx, d.Settings); err != nil {
				return stats, fmt.Errorf("save settings: %w", err)
			}
			stats.Settings = true
		}
	}
	return stats, nil
}

// ImportJSON reads a dump from the file at path and restores it into store.
func ImportJSON(ctx context.Context, store storage.Store, path string) (RestoreStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return RestoreStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ReadJSON(f)
	if err != nil {
		return RestoreStats{}, err
	}
	return Restore(ctx, store, d)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/paper-embeddings/pkg/types"
)

const defaultLabelPositive = "Y"

// Entry is one paper to look up: a title or a paper ID, with its label.
type Entry struct {
	// Key is the title for title sources and the paper ID otherwise.
	// ResolveIDs replaces titles with the matched paper ID.
	Key string

	// Title keeps the original title after resolution.
	Title string

	Label int
}

// ReadSource loads the entries of one source: CSV rows first, in file
// order, then the inline IDs.
func ReadSource(src types.SourceConfig) ([]Entry, error) {
	if err := validateSource(src); err != nil {
		return nil, err
	}

	var entries []Entry
	if src.Path != "" {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("opening source %s: %w", src.Path, err)
		}
		defer f.Close()

		entries, err = parseCSV(f, src)
		if err != nil {
			return nil, fmt.Errorf("reading source %s: %w", src.Path, err)
		}
	}

	for _, id := range src.IDs {
		if id = strings.TrimSpace(id); id != "" {
			entries = append(entries, Entry{Key: id, Label: src.Label})
		}
	}
	return entries, nil
}

func validateSource(src types.SourceConfig) error {
	if src.Path == "" && len(src.IDs) == 0 {
		return errors.New("source needs a path or inline ids")
	}
	if src.Path != "" {
		switch src.Kind {
		case types.SourceTitles, types.SourceIDs:
		default:
			return fmt.Errorf("source %s: kind must be %q or %q, got %q", src.Path, types.SourceTitles, types.SourceIDs, src.Kind)
		}
		if src.Column == "" {
			return fmt.Errorf("source %s: column is required", src.Path)
		}
	}
	if src.LabelColumn == "" && src.Label != 0 && src.Label != 1 {
		return fmt.Errorf("source %s: label must be 0 or 1, got %d", src.Path, src.Label)
	}
	return nil
}

// parseCSV reads a headered CSV and maps rows to entries. Rows with a
// blank key are skipped.
func parseCSV(r io.Reader, src types.SourceConfig) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	keyCol, err := columnIndex(header, src.Column)
	if err != nil {
		return nil, err
	}
	labelCol := -1
	if src.LabelColumn != "" {
		if labelCol, err = columnIndex(header, src.LabelColumn); err != nil {
			return nil, err
		}
	}
	positive := src.LabelPositive
	if positive == "" {
		positive = defaultLabelPositive
	}

	var entries []Entry
	for rows := 0; src.Limit <= 0 || rows < src.Limit; rows++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := strings.TrimSpace(field(rec, keyCol))
		if key == "" {
			continue
		}

		label := src.Label
		if labelCol >= 0 {
			label = 0
			if strings.TrimSpace(field(rec, labelCol)) == positive {
				label = 1
			}
		}

		e := Entry{Key: key, Label: label}
		if src.Kind == types.SourceTitles {
			e.Title = key
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %q not found in header %v", name, header)
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

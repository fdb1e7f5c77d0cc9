// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-embeddings/internal/npy"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// DefaultOutput is the dump path used when none is configured.
const DefaultOutput = "final_embedding.npy"

// DumpPath returns the file WriteDump writes for cfg: Output (or the
// default), with the format's extension added when missing and .gz
// appended when compressing.
func DumpPath(cfg types.DatasetConfig) string {
	path := cfg.Output
	if path == "" {
		path = DefaultOutput
	}
	ext := "." + string(formatOf(cfg))
	if !strings.HasSuffix(path, ext) && !strings.HasSuffix(path, ext+".gz") {
		path += ext
	}
	if cfg.Gzip && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	return path
}

func formatOf(cfg types.DatasetConfig) types.OutputFormat {
	if cfg.Format == "" {
		return types.FormatNPY
	}
	return cfg.Format
}

// WriteDump writes the dataset as a single flat array of rows, each the
// embedding followed by its label. Rows of different lengths are an error
// and nothing is written. The file is written to a temp file and renamed
// into place. It returns the path written.
func WriteDump(cfg types.DatasetConfig, ds *types.Dataset) (string, error) {
	format := formatOf(cfg)
	if format != types.FormatNPY && format != types.FormatJSON {
		return "", fmt.Errorf("unsupported format %q: use npy or json", format)
	}

	m := ds.Matrix()
	if _, err := npy.Shape(m); err != nil {
		return "", fmt.Errorf("dataset is not rectangular: %w", err)
	}

	path := DumpPath(cfg)
	err := writeAtomic(path, func(w io.Writer) error {
		if cfg.Gzip {
			zw := pgzip.NewWriter(w)
			if err := encode(zw, format, m); err != nil {
				zw.Close()
				return err
			}
			return zw.Close()
		}
		return encode(w, format, m)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func encode(w io.Writer, format types.OutputFormat, m [][]float64) error {
	if format == types.FormatJSON {
		if m == nil {
			m = [][]float64{}
		}
		return json.NewEncoder(w).Encode(m)
	}
	return npy.Write(w, m)
}

func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".dump-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := write(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Report records what a build run produced.
type Report struct {
	RunID      string         `yaml:"run_id"`
	FinishedAt time.Time      `yaml:"finished_at"`
	Output     string         `yaml:"output"`
	Format     string         `yaml:"format"`
	Rows       int            `yaml:"rows"`
	Columns    int            `yaml:"columns"`
	Sources    []SourceReport `yaml:"sources"`
	Total      Stats          `yaml:"total"`
}

// SourceReport is the per-source part of a Report.
type SourceReport struct {
	Path    string `yaml:"path,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Entries int    `yaml:"entries"`
	Stats   Stats  `yaml:"stats"`
}

// NewReport summarizes res written to output.
func NewReport(res *Result, output string, format types.OutputFormat) Report {
	r := Report{
		RunID:      uuid.NewString(),
		FinishedAt: time.Now().UTC(),
		Output:     output,
		Format:     string(format),
		Rows:       res.Dataset.Len(),
		Total:      res.Total,
	}
	if r.Format == "" {
		r.Format = string(types.FormatNPY)
	}
	if r.Rows > 0 {
		r.Columns = len(res.Dataset.Rows[0].Vector) + 1
	}
	for _, sr := range res.Sources {
		r.Sources = append(r.Sources, SourceReport{
			Path:    sr.Source.Path,
			Kind:    string(sr.Source.Kind),
			Entries: sr.Entries,
			Stats:   sr.Stats,
		})
	}
	return r
}

// ReportPath returns the report file for a dump path.
func ReportPath(dumpPath string) string {
	return dumpPath + ".report.yaml"
}

// WriteReport marshals r as YAML to path.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-embeddings
// tool: configuration, embeddings, and dataset rows.
package types

// Embedding is a precomputed paper embedding as returned by the API under
// the "embedding" field.
type Embedding struct {
	// Model names the embedding model (e.g. "specter_v2").
	Model string `json:"model" yaml:"model"`

	// Vector holds the embedding values in provider order.
	Vector []float64 `json:"vector" yaml:"vector"`
}

// IsEmpty reports whether the embedding carries no values.
func (e *Embedding) IsEmpty() bool {
	return e == nil || len(e.Vector) == 0
}

// Row is one labeled sample of the dataset.
type Row struct {
	// PaperID is the Semantic Scholar paper ID the vector belongs to.
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Vector is the embedding.
	Vector []float64 `json:"vector" yaml:"vector"`

	// Label is the binary class, 0 or 1.
	Label int `json:"label" yaml:"label"`
}

// Values returns the vector with the label appended as the last column.
func (r Row) Values() []float64 {
	out := make([]float64, len(r.Vector)+1)
	copy(out, r.Vector)
	out[len(r.Vector)] = float64(r.Label)
	return out
}

// Dataset is the ordered collection of rows written in a single dump.
type Dataset struct {
	Rows []Row `json:"rows" yaml:"rows"`
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Append adds rows in order.
func (d *Dataset) Append(rows ...Row) {
	d.Rows = append(d.Rows, rows...)
}

// Matrix returns the rows as value slices, label last.
func (d *Dataset) Matrix() [][]float64 {
	m := make([][]float64, len(d.Rows))
	for i, r := range d.Rows {
		m[i] = r.Values()
	}
	return m
}

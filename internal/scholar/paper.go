// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"fmt"

	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// Paper is a paper object keyed by the requested field names. The API
// defines its shape; only the accessors below interpret it.
type Paper map[string]any

// ID returns the paperId field, or "" when it was not requested.
func (p Paper) ID() string { return p.str("paperId") }

// Title returns the title field.
func (p Paper) Title() string { return p.str("title") }

// Abstract returns the abstract field.
func (p Paper) Abstract() string { return p.str("abstract") }

func (p Paper) str(key string) string {
	s, _ := p[key].(string)
	return s
}

// CitingPaper returns the citingPaper object of a citations entry.
func (p Paper) CitingPaper() Paper { return p.nested("citingPaper") }

// CitedPaper returns the citedPaper object of a references entry.
func (p Paper) CitedPaper() Paper { return p.nested("citedPaper") }

func (p Paper) nested(key string) Paper {
	m, _ := p[key].(map[string]any)
	return Paper(m)
}

// Embedding decodes the embedding field. A missing or null field yields
// (nil, nil); a field of the wrong shape is an error.
func (p Paper) Embedding() (*types.Embedding, error) {
	raw, ok := p["embedding"]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("embedding: unexpected type %T", raw)
	}

	emb := &types.Embedding{}
	emb.Model, _ = m["model"].(string)

	switch vec := m["vector"].(type) {
	case nil:
	case []any:
		emb.Vector = make([]float64, len(vec))
		for i, v := range vec {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("embedding: element %d is %T, not a number", i, v)
			}
			emb.Vector[i] = f
		}
	default:
		return nil, fmt.Errorf("embedding: vector has type %T", vec)
	}
	return emb, nil
}

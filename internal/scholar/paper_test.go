// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePaper(t *testing.T, s string) Paper {
	t.Helper()
	var p Paper
	require.NoError(t, json.Unmarshal([]byte(s), &p))
	return p
}

func TestPaperEmbedding(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantNil    bool
		wantVector []float64
		wantErr    string
	}{
		{name: "missing field", json: `{"paperId":"a"}`, wantNil: true},
		{name: "null field", json: `{"paperId":"a","embedding":null}`, wantNil: true},
		{name: "vector", json: `{"embedding":{"model":"specter_v2","vector":[1,2.5]}}`, wantVector: []float64{1, 2.5}},
		{name: "null vector", json: `{"embedding":{"model":"specter_v2","vector":null}}`},
		{name: "wrong type", json: `{"embedding":"nope"}`, wantErr: "unexpected type"},
		{name: "non-numeric element", json: `{"embedding":{"vector":[1,"x"]}}`, wantErr: "element 1"},
		{name: "vector not a list", json: `{"embedding":{"vector":{}}}`, wantErr: "vector has type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb, err := decodePaper(t, tt.json).Embedding()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, emb)
				return
			}
			require.NotNil(t, emb)
			assert.Equal(t, tt.wantVector, emb.Vector)
			assert.Equal(t, len(tt.wantVector) == 0, emb.IsEmpty())
		})
	}
}

func TestPaperAccessors(t *testing.T) {
	p := decodePaper(t, `{"paperId":"a","title":"T","abstract":null,"citingPaper":{"paperId":"b"}}`)
	assert.Equal(t, "a", p.ID())
	assert.Equal(t, "T", p.Title())
	assert.Equal(t, "", p.Abstract())
	assert.Equal(t, "b", p.CitingPaper().ID())
	assert.Equal(t, "", p.CitedPaper().ID())
}

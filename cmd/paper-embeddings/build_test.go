// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-embeddings/internal/scholar"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

func TestParseSourceSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want types.SourceConfig
	}{
		{
			name: "titles with limit",
			spec: "path=negative_papers.csv,kind=title,column=Title,label=0,limit=5",
			want: types.SourceConfig{Path: "negative_papers.csv", Kind: types.SourceTitles, Column: "Title", Limit: 5},
		},
		{
			name: "label column with spaces and question mark",
			spec: "path=labeled.csv, kind=id, column=ID, label_column=Is MLSys?, label_positive=Y",
			want: types.SourceConfig{Path: "labeled.csv", Kind: types.SourceIDs, Column: "ID", LabelColumn: "Is MLSys?", LabelPositive: "Y"},
		},
		{
			name: "inline ids only",
			spec: "ids=a;b c,label=1",
			want: types.SourceConfig{IDs: []string{"a", "b", "c"}, Label: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSourceSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSourceSpec_Errors(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"path", "expected key=value"},
		{"label=yes", "label"},
		{"limit=-x", "limit"},
		{"colour=red", `unknown key "colour"`},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := parseSourceSpec(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, scholar.Paper{"paperId": "abc"}))
	assert.JSONEq(t, `{"paperId":"abc"}`, buf.String())
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

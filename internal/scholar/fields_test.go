// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePaperFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		invalid []string
	}{
		{"defaults", DefaultFields, nil},
		{"embedding variants", []string{"paperId", "embedding", "embedding.specter_v2"}, nil},
		{"nested author fields", []string{"authors.name", "authors.hIndex"}, nil},
		{"citation-only field rejected", []string{"contexts"}, []string{"contexts"}},
		{"bare authors rejected", []string{"authors"}, []string{"authors"}},
		{"collects all invalid in order", []string{"x", "title", "y"}, []string{"x", "y"}},
		{"case sensitive", []string{"PaperId"}, []string{"PaperId"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaperFields(tt.fields)
			if tt.invalid == nil {
				assert.NoError(t, err)
				return
			}
			var ife *InvalidFieldsError
			if assert.ErrorAs(t, err, &ife) {
				assert.Equal(t, tt.invalid, ife.Fields)
			}
		})
	}
}

func TestValidateCitationFields(t *testing.T) {
	assert.NoError(t, ValidateCitationFields([]string{"contexts", "intents", "contextsWithIntent", "isInfluential", "authors"}))
	assert.NoError(t, ValidateCitationFields(DefaultFields))

	var ife *InvalidFieldsError
	assert.ErrorAs(t, ValidateCitationFields([]string{"embedding", "authors.name"}), &ife)
	assert.Equal(t, []string{"embedding", "authors.name"}, ife.Fields)
}

func TestResolveFields(t *testing.T) {
	assert.Equal(t, DefaultFields, resolveFields(nil))
	assert.Equal(t, DefaultFields, resolveFields([]string{}))
	assert.Equal(t, []string{"title"}, resolveFields([]string{"title"}))
}

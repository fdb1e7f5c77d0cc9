// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"fmt"
	"strings"
)

// DefaultFields is used when a caller requests no fields.
var DefaultFields = []string{"paperId", "title", "abstract"}

// paperFields are the names accepted by the paper lookup endpoints.
var paperFields = newFieldSet(
	"paperId", "corpusId", "externalIds", "url", "title", "abstract",
	"venue", "publicationVenue", "year", "referenceCount", "citationCount",
	"influentialCitationCount", "isOpenAccess", "openAccessPdf",
	"fieldsOfStudy", "s2FieldsOfStudy", "publicationTypes",
	"publicationDate", "journal", "citationStyles",

	"authors.authorId", "authors.externalIds", "authors.url", "authors.name",
	"authors.affiliations", "authors.homepage", "authors.paperCount",
	"authors.citationCount", "authors.hIndex",

	"citations.paperId", "citations.corpusId", "citations.externalIds",
	"citations.url", "citations.title", "citations.abstract", "citations.venue",
	"citations.publicationVenue", "citations.year", "citations.referenceCount",
	"citations.citationCount", "citations.influentialCitationCount",
	"citations.isOpenAccess", "citations.openAccessPdf",
	"citations.fieldsOfStudy", "citations.s2FieldsOfStudy",
	"citations.publicationTypes", "citations.publicationDate",
	"citations.journal", "citations.citationStyles", "citations.authors",

	"references.paperId", "references.corpusId", "references.externalIds",
	"references.url", "references.title", "references.abstract",
	"references.venue", "references.publicationVenue", "references.year",
	"references.referenceCount", "references.citationCount",
	"references.influentialCitationCount", "references.isOpenAccess",
	"references.openAccessPdf", "references.fieldsOfStudy",
	"references.s2FieldsOfStudy", "references.publicationTypes",
	"references.publicationDate", "references.journal",
	"references.citationStyles", "references.authors",

	"embedding", "embedding.specter_v2",
)

// citationFields are the names accepted by the citations and references
// endpoints.
var citationFields = newFieldSet(
	"contexts", "intents", "contextsWithIntent", "isInfluential",
	"paperId", "corpusId", "url", "title", "venue", "publicationVenue",
	"year", "authors", "externalIds", "abstract", "referenceCount",
	"citationCount", "influentialCitationCount", "isOpenAccess",
	"openAccessPdf", "fieldsOfStudy", "s2FieldsOfStudy", "publicationTypes",
	"publicationDate", "journal", "citationStyles",
)

type fieldSet map[string]struct{}

func newFieldSet(names ...string) fieldSet {
	s := make(fieldSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// InvalidFieldsError lists requested field names outside the allowlist.
type InvalidFieldsError struct {
	Fields []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("the following fields are invalid: %s", strings.Join(e.Fields, ","))
}

// validateFields returns an *InvalidFieldsError naming every field not in
// allowed, in request order.
func validateFields(fields []string, allowed fieldSet) error {
	var invalid []string
	for _, f := range fields {
		if _, ok := allowed[f]; !ok {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) > 0 {
		return &InvalidFieldsError{Fields: invalid}
	}
	return nil
}

// ValidatePaperFields checks names against the paper lookup allowlist.
func ValidatePaperFields(fields []string) error {
	return validateFields(fields, paperFields)
}

// ValidateCitationFields checks names against the citations/references
// allowlist.
func ValidateCitationFields(fields []string) error {
	return validateFields(fields, citationFields)
}

// resolveFields falls back to DefaultFields for an empty request.
func resolveFields(fields []string) []string {
	if len(fields) == 0 {
		return DefaultFields
	}
	return fields
}

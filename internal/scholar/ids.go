// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"net/url"
	"regexp"
	"strings"
)

// IDType classifies a paper identifier.
type IDType int

const (
	IDUnknown IDType = iota
	IDPaper
	IDCorpus
	IDArxiv
	IDDOI
	IDURL
	IDPrefixed
)

func (t IDType) String() string {
	switch t {
	case IDPaper:
		return "paper"
	case IDCorpus:
		return "corpus"
	case IDArxiv:
		return "arxiv"
	case IDDOI:
		return "doi"
	case IDURL:
		return "url"
	case IDPrefixed:
		return "prefixed"
	default:
		return "unknown"
	}
}

var (
	// paperIDPattern matches a Semantic Scholar paperId (40 hex chars).
	paperIDPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

	// arxivPattern matches "2301.07041", "arXiv:2301.07041", "2301.07041v2".
	arxivPattern = regexp.MustCompile(`^(?i:arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

	// doiPattern matches "10.1145/1234567.1234568" with an optional
	// "doi:" or resolver prefix.
	doiPattern = regexp.MustCompile(`^(?i:doi:|https?://(?:dx\.)?doi\.org/)?(10\.\d{4,9}/\S+)$`)

	corpusPattern = regexp.MustCompile(`^(?i:CorpusId:)?(\d+)$`)

	// prefixedPattern matches the other external ID forms the API accepts.
	prefixedPattern = regexp.MustCompile(`^(?i:MAG|ACL|PMID|PMCID):\S+$`)
)

// ClassifyID determines the identifier type and returns the form the API
// expects in a /paper/{id} path: bare paperIds, "CorpusId:N", "arXiv:X",
// "DOI:X", and "URL:X".
func ClassifyID(id string) (IDType, string) {
	id = strings.TrimSpace(id)

	if paperIDPattern.MatchString(id) {
		return IDPaper, id
	}
	if m := arxivPattern.FindStringSubmatch(id); m != nil {
		return IDArxiv, "arXiv:" + m[1]
	}
	if m := doiPattern.FindStringSubmatch(id); m != nil {
		return IDDOI, "DOI:" + m[1]
	}
	if m := corpusPattern.FindStringSubmatch(id); m != nil {
		return IDCorpus, "CorpusId:" + m[1]
	}
	if prefixedPattern.MatchString(id) {
		return IDPrefixed, id
	}
	if strings.HasPrefix(id, "URL:") {
		return IDURL, id
	}
	if u, err := url.Parse(id); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return IDURL, "URL:" + id
	}
	return IDUnknown, id
}

// NormalizeID returns the API form of id, or id unchanged when it is not
// recognized.
func NormalizeID(id string) string {
	_, n := ClassifyID(id)
	return n
}

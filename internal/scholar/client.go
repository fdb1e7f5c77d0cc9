// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is a thin client for the Semantic Scholar Graph API.
// It validates requested field names against fixed allowlists and
// classifies failures as not-found, rate-limited, or server errors.
package scholar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-embeddings/internal/httputil"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// DefaultBaseURL is the Graph API root.
const DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

// maxPageSize is the largest limit the citations and references endpoints
// accept.
const maxPageSize = 1000

// Client calls the Graph API. The zero value is not usable; build one with
// NewClient or fill HTTP and BaseURL directly.
type Client struct {
	HTTP      httputil.Doer
	BaseURL   string
	APIKey    string
	UserAgent string

	// Limiter paces requests when set.
	Limiter *rate.Limiter
}

// NewClient builds a Client from cfg with a pester transport.
func NewClient(cfg types.ClientConfig, log logrus.FieldLogger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		HTTP:      httputil.NewClient(cfg.HTTPConfig, log),
		BaseURL:   base,
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
	}
	if cfg.RequestsPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// GetPaperByID returns the paper with the given ID. Any ID form the API
// accepts works (e.g. a 40-char paperId, "DOI:...", "arXiv:..."); bare DOIs,
// arXiv IDs, corpus IDs, and URLs are prefixed first (see ClassifyID).
func (c *Client) GetPaperByID(ctx context.Context, paperID string, fields []string) (Paper, error) {
	fields = resolveFields(fields)
	if err := ValidatePaperFields(fields); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("paper with ID %q", paperID)
	params := url.Values{"fields": {strings.Join(fields, ",")}}

	var p Paper
	if err := c.get(ctx, "/paper/"+escapeID(paperID), params, subject, &p); err != nil {
		return nil, err
	}
	if _, ok := p["paperId"]; !ok {
		return nil, fmt.Errorf("could not find %s: %w", subject, ErrNotFound)
	}
	return p, nil
}

// GetPaperByTitle returns the closest title match from the
// /paper/search/match endpoint.
func (c *Client) GetPaperByTitle(ctx context.Context, title string, fields []string) (Paper, error) {
	fields = resolveFields(fields)
	if err := ValidatePaperFields(fields); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("paper with title %q", title)
	params := url.Values{
		"query":  {title},
		"fields": {strings.Join(fields, ",")},
	}

	var resp struct {
		Data []Paper `json:"data"`
	}
	if err := c.get(ctx, "/paper/search/match", params, subject, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("could not find %s: %w", subject, ErrNotFound)
	}
	return resp.Data[0], nil
}

// ListOptions selects a page of citations or references. The zero value
// asks for the API's first default-sized page.
type ListOptions struct {
	Offset int
	Limit  int
}

// Page is one page of citations or references.
type Page struct {
	Offset int
	// Next is the offset of the following page; HasNext is false on the
	// last page.
	Next    int
	HasNext bool
	Data    []Paper
}

// GetCitations returns entries for papers citing paperID. Each entry holds
// the requested fields of the citing paper under "citingPaper", next to
// per-citation fields such as "contexts" and "isInfluential".
func (c *Client) GetCitations(ctx context.Context, paperID string, fields []string, opts ...ListOptions) ([]Paper, error) {
	page, err := c.listPage(ctx, "citations", paperID, fields, firstOpts(opts))
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetReferences returns entries for papers referenced by paperID, with the
// referenced paper under "citedPaper".
func (c *Client) GetReferences(ctx context.Context, paperID string, fields []string, opts ...ListOptions) ([]Paper, error) {
	page, err := c.listPage(ctx, "references", paperID, fields, firstOpts(opts))
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// CitationsPage returns one page of citations with its paging cursor.
func (c *Client) CitationsPage(ctx context.Context, paperID string, fields []string, opts ListOptions) (*Page, error) {
	return c.listPage(ctx, "citations", paperID, fields, opts)
}

// ReferencesPage returns one page of references with its paging cursor.
func (c *Client) ReferencesPage(ctx context.Context, paperID string, fields []string, opts ListOptions) (*Page, error) {
	return c.listPage(ctx, "references", paperID, fields, opts)
}

// WalkCitations pages through every citation of paperID, calling fn for
// each entry. pageSize 0 uses the largest page the API allows. A non-nil
// error from fn stops the walk and is returned.
func (c *Client) WalkCitations(ctx context.Context, paperID string, fields []string, pageSize int, fn func(Paper) error) error {
	return c.walk(ctx, "citations", paperID, fields, pageSize, fn)
}

// WalkReferences is WalkCitations for the references endpoint.
func (c *Client) WalkReferences(ctx context.Context, paperID string, fields []string, pageSize int, fn func(Paper) error) error {
	return c.walk(ctx, "references", paperID, fields, pageSize, fn)
}

func (c *Client) walk(ctx context.Context, edge, paperID string, fields []string, pageSize int, fn func(Paper) error) error {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	opts := ListOptions{Limit: pageSize}
	for {
		page, err := c.listPage(ctx, edge, paperID, fields, opts)
		if err != nil {
			return err
		}
		for _, p := range page.Data {
			if err := fn(p); err != nil {
				return err
			}
		}
		if !page.HasNext || page.Next <= opts.Offset {
			return nil
		}
		opts.Offset = page.Next
	}
}

func (c *Client) listPage(ctx context.Context, edge, paperID string, fields []string, opts ListOptions) (*Page, error) {
	fields = resolveFields(fields)
	if err := ValidateCitationFields(fields); err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("%s of paper ID %q", edge, paperID)
	params := url.Values{"fields": {strings.Join(fields, ",")}}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var resp struct {
		Offset int      `json:"offset"`
		Next   *int     `json:"next"`
		Data   *[]Paper `json:"data"`
	}
	if err := c.get(ctx, "/paper/"+escapeID(paperID)+"/"+edge, params, subject, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("could not find %s: %w", subject, ErrNotFound)
	}

	page := &Page{Offset: resp.Offset, Data: *resp.Data}
	if resp.Next != nil {
		page.Next = *resp.Next
		page.HasNext = true
	}
	return page, nil
}

// get performs a GET on path and decodes a 2xx JSON body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, subject string, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	reqURL := strings.TrimRight(c.BaseURL, "/") + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-KEY", c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request for %s: %w", subject, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response for %s: %w", subject, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", subject, ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("could not find %s: %w", subject, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Subject:    subject,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response for %s: %w", subject, err)
	}
	return nil
}

// escapeID normalizes id and path-escapes each segment. DOI-style IDs keep
// their slashes, which the API expects.
func escapeID(id string) string {
	parts := strings.Split(NormalizeID(id), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func firstOpts(opts []ListOptions) ListOptions {
	if len(opts) == 0 {
		return ListOptions{}
	}
	return opts[0]
}

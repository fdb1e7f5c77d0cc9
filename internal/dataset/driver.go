// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset turns CSV lists of paper titles or IDs into a labeled
// embedding dataset. Lookups run one at a time; a rate-limited lookup is
// retried after a fixed sleep, and any other failure is logged and the
// paper skipped.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-embeddings/internal/httputil"
	"github.com/pdiddy/paper-embeddings/internal/scholar"
	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// Fields requested per lookup.
var (
	titleFields     = []string{"paperId", "title"}
	embeddingFields = []string{"paperId", "embedding.specter_v2"}
)

// PaperClient is the part of the API client the driver needs.
type PaperClient interface {
	GetPaperByID(ctx context.Context, paperID string, fields []string) (scholar.Paper, error)
	GetPaperByTitle(ctx context.Context, title string, fields []string) (scholar.Paper, error)
}

// Progress receives one Add(1) per processed entry. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

// Driver runs lookups against the API.
type Driver struct {
	Client   PaperClient
	Log      logrus.FieldLogger
	Retry    types.RetryConfig
	Progress Progress
}

// NewDriver returns a Driver that logs to log, or to a discarding logger
// when log is nil.
func NewDriver(client PaperClient, retry types.RetryConfig, log logrus.FieldLogger) *Driver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Driver{Client: client, Log: log, Retry: retry}
}

// ResolveIDs looks up each title and returns entries whose Key is the
// matched paper ID, in input order. Titles that cannot be matched, for any
// reason, are logged, listed under Unresolved, and dropped.
func (d *Driver) ResolveIDs(ctx context.Context, entries []Entry) ([]Entry, Stats, error) {
	var (
		resolved []Entry
		stats    Stats
	)
	for i, e := range entries {
		title := e.Key
		if e.Title != "" {
			title = e.Title
		}

		p, err := d.lookup(ctx, func(ctx context.Context) (scholar.Paper, error) {
			return d.Client.GetPaperByTitle(ctx, title, titleFields)
		})
		d.tick()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return resolved, stats, ctxErr
			}
			d.Log.WithField("n", i+1).Warn(err.Error())
			stats.Unresolved = append(stats.Unresolved, title)
			continue
		}

		d.Log.WithFields(logrus.Fields{"n": i + 1, "paper_id": p.ID()}).Infof("Found %s", title)
		resolved = append(resolved, Entry{Key: p.ID(), Title: title, Label: e.Label})
	}
	return resolved, stats, nil
}

// FetchEmbeddings fetches the SPECTER v2 embedding of each entry and
// returns one row per paper that has one, in input order. Papers without
// an embedding, and papers whose lookup failed, are counted and skipped.
func (d *Driver) FetchEmbeddings(ctx context.Context, entries []Entry) ([]types.Row, Stats, error) {
	var (
		rows  []types.Row
		stats Stats
	)
	for i, e := range entries {
		log := d.Log.WithFields(logrus.Fields{"n": i + 1, "paper_id": e.Key})

		p, err := d.lookup(ctx, func(ctx context.Context) (scholar.Paper, error) {
			return d.Client.GetPaperByID(ctx, e.Key, embeddingFields)
		})
		d.tick()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return rows, stats, ctxErr
			}
			log.Warn(err.Error())
			stats.record(e.Key, err)
			continue
		}

		emb, err := p.Embedding()
		if err != nil {
			log.WithError(err).Warn("Malformed embedding")
			stats.Failed = append(stats.Failed, e.Key)
			continue
		}
		if emb.IsEmpty() {
			log.Infof("Did not find embedding for %s", e.Key)
			stats.NoEmbedding = append(stats.NoEmbedding, e.Key)
			continue
		}

		log.Infof("Found embedding for %s", e.Key)
		rows = append(rows, types.Row{PaperID: e.Key, Vector: emb.Vector, Label: e.Label})
		stats.Embeddings++
	}
	return rows, stats, nil
}

// SourceResult holds the outcome of one source.
type SourceResult struct {
	Source  types.SourceConfig
	Entries int
	Stats   Stats
}

// Result is the outcome of Build.
type Result struct {
	Dataset types.Dataset
	Sources []SourceResult
	Total   Stats
}

// Build processes sources in order and concatenates their rows. Title
// sources are resolved to IDs first; inline IDs skip resolution. Build
// stops only on a source it cannot read or on context cancellation.
func (d *Driver) Build(ctx context.Context, sources []types.SourceConfig) (*Result, error) {
	res := &Result{}
	for _, src := range sources {
		entries, err := ReadSource(src)
		if err != nil {
			return res, err
		}
		d.Log.WithFields(logrus.Fields{"source": src.Path, "kind": src.Kind, "entries": len(entries)}).Info("Processing source")

		sr := SourceResult{Source: src, Entries: len(entries)}

		if src.Kind == types.SourceTitles {
			var titles, ids []Entry
			for _, e := range entries {
				if e.Title != "" {
					titles = append(titles, e)
				} else {
					ids = append(ids, e)
				}
			}
			resolved, stats, err := d.ResolveIDs(ctx, titles)
			sr.Stats.Merge(stats)
			if err != nil {
				res.add(sr)
				return res, err
			}
			entries = append(resolved, ids...)
		}

		rows, stats, err := d.FetchEmbeddings(ctx, entries)
		sr.Stats.Merge(stats)
		res.Dataset.Append(rows...)
		res.add(sr)
		if err != nil {
			return res, err
		}
	}

	d.LogSummary(res.Total)
	return res, nil
}

func (r *Result) add(sr SourceResult) {
	r.Sources = append(r.Sources, sr)
	r.Total.Merge(sr.Stats)
}

// LogSummary writes the end-of-run counts.
func (d *Driver) LogSummary(s Stats) {
	d.Log.Infof("Embedding: %d", s.Embeddings)
	d.Log.Infof("No Embedding: %d", len(s.NoEmbedding))
	d.Log.Infof("Server Errors: %d", len(s.ServerErrors))
	if len(s.ServerErrors) > 0 {
		d.Log.Infof("%v", s.ServerErrors)
	}
	if n := len(s.NotFound); n > 0 {
		d.Log.Infof("Not Found: %d", n)
	}
	if n := len(s.RateLimited); n > 0 {
		d.Log.Infof("Rate Limited: %d", n)
	}
	if n := len(s.Failed); n > 0 {
		d.Log.Infof("Failed: %d", n)
	}
	if n := len(s.Unresolved); n > 0 {
		d.Log.Infof("Unresolved Titles: %d", n)
	}
}

// RateLimitPolicy returns the fixed sleep-and-retry policy for rc that
// retries only rate-limited calls and logs each sleep.
func RateLimitPolicy(rc types.RetryConfig, log logrus.FieldLogger) httputil.Policy {
	return httputil.Policy{
		Delay:       rc.Delay,
		MaxAttempts: rc.MaxAttempts,
		Retryable:   scholar.IsRateLimited,
		OnRetry: func(attempt int, _ error) {
			log.WithField("attempt", attempt).Warn("Rate limit exceeded, sleeping...")
		},
	}
}

// lookup runs fn under RateLimitPolicy.
func (d *Driver) lookup(ctx context.Context, fn func(context.Context) (scholar.Paper, error)) (scholar.Paper, error) {
	var p scholar.Paper
	err := httputil.Retry(ctx, RateLimitPolicy(d.Retry, d.Log), func(ctx context.Context) error {
		var err error
		p, err = fn(ctx)
		return err
	})
	return p, err
}

func (d *Driver) tick() {
	if d.Progress != nil {
		_ = d.Progress.Add(1)
	}
}

// Stats counts lookup outcomes. Unresolved holds titles that could not be
// matched; every other slice holds paper IDs. Both keep the order the
// lookups ran in.
type Stats struct {
	Embeddings   int      `json:"embeddings" yaml:"embeddings"`
	NoEmbedding  []string `json:"no_embedding,omitempty" yaml:"no_embedding,omitempty"`
	ServerErrors []string `json:"server_errors,omitempty" yaml:"server_errors,omitempty"`
	NotFound     []string `json:"not_found,omitempty" yaml:"not_found,omitempty"`
	RateLimited  []string `json:"rate_limited,omitempty" yaml:"rate_limited,omitempty"`
	Failed       []string `json:"failed,omitempty" yaml:"failed,omitempty"`
	Unresolved   []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// Skipped returns the number of entries that produced no row.
func (s Stats) Skipped() int {
	return len(s.NoEmbedding) + len(s.ServerErrors) + len(s.NotFound) + len(s.RateLimited) + len(s.Failed) + len(s.Unresolved)
}

// Merge adds o into s.
func (s *Stats) Merge(o Stats) {
	s.Embeddings += o.Embeddings
	s.NoEmbedding = append(s.NoEmbedding, o.NoEmbedding...)
	s.ServerErrors = append(s.ServerErrors, o.ServerErrors...)
	s.NotFound = append(s.NotFound, o.NotFound...)
	s.RateLimited = append(s.RateLimited, o.RateLimited...)
	s.Failed = append(s.Failed, o.Failed...)
	s.Unresolved = append(s.Unresolved, o.Unresolved...)
}

// record files a failed lookup under its error class.
func (s *Stats) record(key string, err error) {
	switch {
	case scholar.IsServerError(err):
		s.ServerErrors = append(s.ServerErrors, key)
	case errors.Is(err, scholar.ErrNotFound):
		s.NotFound = append(s.NotFound, key)
	case scholar.IsRateLimited(err):
		s.RateLimited = append(s.RateLimited, key)
	default:
		s.Failed = append(s.Failed, key)
	}
}

// String summarizes the counts on one line.
func (s Stats) String() string {
	return fmt.Sprintf("embeddings: %d, no embedding: %d, server errors: %d, not found: %d, rate limited: %d, failed: %d, unresolved: %d",
		s.Embeddings, len(s.NoEmbedding), len(s.ServerErrors), len(s.NotFound), len(s.RateLimited), len(s.Failed), len(s.Unresolved))
}

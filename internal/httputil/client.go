// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/http"

	"github.com/sethgrid/pester"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-embeddings/pkg/types"
)

// Doer sends HTTP requests. Both *http.Client and *pester.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns a pester client configured from cfg. Pester only
// repeats a request on connection errors and 5xx responses, and only when
// TransportAttempts is above 1; rate limiting (429) is always handed back
// to the caller.
func NewClient(cfg types.HTTPConfig, log logrus.FieldLogger) *pester.Client {
	attempts := cfg.TransportAttempts
	if attempts <= 0 {
		attempts = 1
	}

	c := pester.New()
	c.Concurrency = 1
	c.MaxRetries = attempts
	c.Backoff = pester.DefaultBackoff
	c.RetryOnHTTP429 = false
	c.Timeout = cfg.Timeout
	if log != nil {
		c.LogHook = func(e pester.ErrEntry) {
			log.WithFields(logrus.Fields{
				"method":  e.Verb,
				"url":     e.URL,
				"attempt": e.Attempt,
			}).WithError(e.Err).Debug("transport attempt failed")
		}
	}
	return c
}

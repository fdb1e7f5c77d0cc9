// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the API client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-embeddings/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// TransportAttempts is the number of attempts the transport makes on
	// connection errors and 5xx responses (default 1, no transport retry).
	// HTTP 429 is never retried by the transport.
	TransportAttempts int `json:"transport_attempts" yaml:"transport_attempts" mapstructure:"transport_attempts"`
}

// ClientConfig holds settings for the Semantic Scholar client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Graph API root (default https://api.semanticscholar.org/graph/v1).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent as X-API-KEY when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// RetryConfig controls the fixed sleep-and-retry applied when the API
// reports a rate limit.
type RetryConfig struct {
	// Delay is the sleep between attempts (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MaxAttempts bounds the attempts per paper. Zero retries until the
	// request succeeds or the context is cancelled.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
}

// SourceKind says whether a source column holds paper titles or paper IDs.
type SourceKind string

const (
	SourceTitles SourceKind = "title"
	SourceIDs    SourceKind = "id"
)

// SourceConfig describes one CSV input of the dataset build.
type SourceConfig struct {
	// Path is the CSV file. It must have a header row.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Kind selects title lookup or direct ID lookup.
	Kind SourceKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Column is the header of the title or ID column.
	Column string `json:"column" yaml:"column" mapstructure:"column"`

	// Label is the fixed label for every row when LabelColumn is empty.
	Label int `json:"label" yaml:"label" mapstructure:"label"`

	// LabelColumn names a column whose value decides the label per row.
	LabelColumn string `json:"label_column,omitempty" yaml:"label_column,omitempty" mapstructure:"label_column"`

	// LabelPositive is the LabelColumn value that maps to label 1 (default "Y").
	LabelPositive string `json:"label_positive,omitempty" yaml:"label_positive,omitempty" mapstructure:"label_positive"`

	// Limit caps the number of CSV rows read. Zero reads all rows.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty" mapstructure:"limit"`

	// IDs lists extra paper IDs appended to this source with the fixed
	// Label, for papers the title lookup does not find.
	IDs []string `json:"ids,omitempty" yaml:"ids,omitempty" mapstructure:"ids"`
}

// OutputFormat selects the dump format.
type OutputFormat string

const (
	FormatNPY  OutputFormat = "npy"
	FormatJSON OutputFormat = "json"
)

// DatasetConfig holds settings for the build stage.
type DatasetConfig struct {
	// Sources are processed in order; their rows are concatenated.
	Sources []SourceConfig `json:"sources" yaml:"sources" mapstructure:"sources"`

	// Output is the dump path (default final_embedding.npy).
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Format selects npy or json.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Gzip compresses the dump and appends .gz to Output.
	Gzip bool `json:"gzip" yaml:"gzip" mapstructure:"gzip"`

	// Report writes a YAML run report next to the dump.
	Report bool `json:"report" yaml:"report" mapstructure:"report"`

	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// Config groups everything the CLI reads from file, env, and flags.
type Config struct {
	Client  ClientConfig  `json:"client" yaml:"client" mapstructure:"client"`
	Dataset DatasetConfig `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-attempt HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// NCBI enforces 3 requests per second for anonymous callers and 10 with
// an API key.
const (
	RateLimitAnonymous = 3
	RateLimitWithKey   = 10
)

// FetchConfig holds settings for the bulk fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email identifies the caller to NCBI E-utilities (required).
	Email string `json:"email" yaml:"email"`

	// APIKey is an optional NCBI API key for the higher rate ceiling.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// DataDir is the base directory for the record store, ledger, and
	// advisory files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// BatchSize bounds both the size of each checkpointed batch and the
	// number of concurrently in-flight requests.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// RateLimit is the cap on outbound requests per second across all
	// workers. Zero selects the NCBI default for the credential in use.
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`

	// MaxRetries is the number of additional attempts after the first
	// for transient failures.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the base backoff delay; attempt n waits
	// RetryDelay * 2^n.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// EffectiveRate resolves the configured rate limit, falling back to the
// NCBI ceiling that matches the credential in use.
func (c FetchConfig) EffectiveRate() int {
	if c.RateLimit > 0 {
		return c.RateLimit
	}
	if c.APIKey != "" {
		return RateLimitWithKey
	}
	return RateLimitAnonymous
}

// DatasetConfig holds settings for the dataset assembly stage.
type DatasetConfig struct {
	// Name and Version populate dataset-info.json.
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`

	// DataDir is the base directory holding abstracts/ and the question
	// corpus files.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// TrainingFile is the corpus file used for the dev split.
	TrainingFile string `json:"training_file" yaml:"training_file"`

	// GoldsetDir holds the corpus files used for the test split.
	GoldsetDir string `json:"goldset_dir" yaml:"goldset_dir"`

	// OutputDir receives the assembled dataset.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

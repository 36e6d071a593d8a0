// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed fetches article metadata from NCBI E-utilities and
// parses the Medline payload into normalized records.
package pubmed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/internal/ratelimit"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// efetchBase is the E-utilities efetch endpoint. Declared as a var so
// tests can substitute an httptest server.
var efetchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

const defaultTool = "pubmed-harvest"

// Client retrieves single PubMed records. Every attempt, including
// retries, first passes through the shared rate limiter, so the retry
// loop can never exceed the process-wide request budget.
type Client struct {
	HTTP    *http.Client
	Limiter *ratelimit.Limiter

	// BaseURL overrides the efetch endpoint; empty selects the NCBI
	// default.
	BaseURL string

	Email     string
	APIKey    string
	Tool      string
	UserAgent string

	// MaxRetries bounds additional attempts after the first; RetryDelay
	// is the backoff base (attempt n waits RetryDelay * 2^n).
	MaxRetries int
	RetryDelay time.Duration

	log zerolog.Logger
}

// NewClient builds a Client from the fetch configuration and a shared
// limiter.
func NewClient(cfg types.FetchConfig, limiter *ratelimit.Limiter) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		Limiter:    limiter,
		Email:      cfg.Email,
		APIKey:     cfg.APIKey,
		Tool:       defaultTool,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		log:        logging.For("pubmed"),
	}
}

// backoffDelay computes the wait before retrying attempt (0-based):
// base, 2*base, 4*base, ...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << uint(attempt)
}

// Fetch retrieves one record, retrying transient failures with
// exponential backoff. Permanent failures return immediately. The
// returned error is always a *FetchError apart from context
// cancellation.
func (c *Client) Fetch(ctx context.Context, pmid string) (*types.Article, error) {
	for attempt := 0; ; attempt++ {
		if err := c.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		article, kind, err := c.fetchOnce(ctx, pmid)
		if err == nil {
			return article, nil
		}

		if kind == KindPermanent || attempt >= c.MaxRetries {
			return nil, &FetchError{PMID: pmid, Kind: kind, Attempts: attempt + 1, Err: err}
		}

		delay := backoffDelay(c.RetryDelay, attempt)
		c.log.Warn().
			Str("pmid", pmid).
			Str("kind", string(kind)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Err(err).
			Msg("transient failure, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// fetchOnce issues a single efetch request and classifies any failure.
func (c *Client) fetchOnce(ctx context.Context, pmid string) (*types.Article, ErrorKind, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"rettype": {"medline"},
		"retmode": {"text"},
		"tool":    {c.Tool},
	}
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	base := c.BaseURL
	if base == "" {
		base = efetchBase
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, KindPermanent, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Timeouts and connection failures are worth another attempt.
		return nil, KindTransient, fmt.Errorf("efetch request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, KindRateLimit, fmt.Errorf("efetch returned HTTP 429")
	case resp.StatusCode >= 500:
		return nil, KindTransient, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, KindPermanent, fmt.Errorf("efetch returned HTTP 404: %w", ErrNoRecord)
	case resp.StatusCode != http.StatusOK:
		return nil, KindPermanent, fmt.Errorf("efetch returned HTTP %d", resp.StatusCode)
	}

	fields, err := parseMedline(resp.Body)
	if err != nil {
		return nil, KindTransient, fmt.Errorf("reading efetch response: %w", err)
	}
	// E-utilities reports unknown PMIDs as an empty 200 response.
	if len(fields) == 0 {
		return nil, KindPermanent, fmt.Errorf("PMID %s: %w", pmid, ErrNoRecord)
	}

	return articleFromMedline(fields, pmid), "", nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure. The split drives retry policy:
// transient and rate-limit failures are retried with backoff, permanent
// failures are not, because repeating them only burns rate budget.
type ErrorKind string

const (
	// KindTransient covers timeouts, connection failures, and 5xx
	// responses.
	KindTransient ErrorKind = "transient"

	// KindRateLimit covers throttling signals (HTTP 429). Retried like
	// transient failures; kept distinct for the ledger.
	KindRateLimit ErrorKind = "rate_limit"

	// KindPermanent covers not-found identifiers and malformed payloads.
	KindPermanent ErrorKind = "permanent"
)

// ErrNoRecord is returned when E-utilities answers successfully but the
// response contains no Medline record for the requested PMID.
var ErrNoRecord = errors.New("no record found")

// FetchError is the terminal error for one identifier, carrying what the
// failure ledger needs: the kind, the attempt count, and the last cause.
type FetchError struct {
	PMID     string
	Kind     ErrorKind
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching PMID %s: %s failure after %d attempt(s): %v",
		e.PMID, e.Kind, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unwraps err into a *FetchError if one is present.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	ok := errors.As(err, &fe)
	return fe, ok
}

// IsPermanent reports whether err is a fetch failure that retrying
// cannot fix.
func IsPermanent(err error) bool {
	fe, ok := AsFetchError(err)
	return ok && fe.Kind == KindPermanent
}

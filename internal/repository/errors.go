package repository

import "errors"

var (
	// ErrEmptyQueue is returned by queue selection when no work units exist.
	// Callers wait and poll; it is never fatal.
	ErrEmptyQueue = errors.New("no work units available")

	// ErrNoPlaceholder is returned by the template synthesizer when the query
	// term cannot be located inside a candidate URL. The candidate is discarded.
	ErrNoPlaceholder = errors.New("query term not found in candidate URL")

	// ErrNoProducts is returned by the parser when the page loaded but no
	// strategy yielded a plausible record. An expected outcome, not a failure.
	ErrNoProducts = errors.New("no products found on page")

	// ErrMalformedTemplate is returned when a persisted template is missing
	// its placeholder. The template is skipped; others continue.
	ErrMalformedTemplate = errors.New("template is missing the query placeholder")

	// ErrRateLimited is returned by the site discovery collaborator on
	// rate-limit or quota responses. Transient; retried with backoff.
	ErrRateLimited = errors.New("site discovery rate limit exceeded")

	// ErrFetchTimeout is returned when a page did not render in time.
	ErrFetchTimeout = errors.New("page fetch timed out")

	// ErrFetchBlocked is returned when the target refused the fetch.
	ErrFetchBlocked = errors.New("page fetch was blocked by target")

	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = errors.New("not found")
)

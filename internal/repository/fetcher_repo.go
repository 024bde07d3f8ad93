package repository

import "context"

// PageFetcher defines the contract for the browser rendering collaborator.
type PageFetcher interface {
	// Fetch navigates to the URL, waits for the page to render and returns
	// the resulting HTML. Returns ErrFetchTimeout or ErrFetchBlocked
	// (possibly wrapped) on failure.
	Fetch(ctx context.Context, url string) (string, error)
}

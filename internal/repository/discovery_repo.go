package repository

import "context"

// SiteDiscovery defines the contract for the third-party search API used to
// find candidate e-commerce sites for a query.
type SiteDiscovery interface {
	// Discover returns a bounded list of result URLs for the query.
	// Returns ErrRateLimited (possibly wrapped) on quota exhaustion.
	Discover(ctx context.Context, query string) ([]string, error)
}

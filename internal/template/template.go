// Package template turns discovered site URLs into reusable search URL
// templates and substitutes query terms back into them.
//
// A template is an ordinary URL whose search term has been replaced by the
// single Placeholder token, e.g.
//
//	https://shop.example/search?q={query}
package template

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/user/harvester-service/internal/repository"
)

// Placeholder stands in for the search query inside a template.
const Placeholder = "{query}"

// Synthesize locates the query term inside the candidate URL's path or query
// string and replaces its first occurrence with Placeholder. Candidates whose
// search mechanism is not expressible as a substituted URL yield
// repository.ErrNoPlaceholder and must not be persisted.
func Synthesize(rawURL, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("synthesize %q: empty query", rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("synthesize: parse candidate: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("synthesize %q: not an absolute http(s) URL", rawURL)
	}

	// Never substitute inside the scheme or host; only the path and query
	// portion of the URL is searched.
	prefix := u.Scheme + "://" + u.Host
	if !strings.HasPrefix(rawURL, prefix) {
		// Parsed host differs from raw spelling (IDN, case). Too ambiguous
		// to substitute safely.
		return "", fmt.Errorf("synthesize %q: %w", rawURL, repository.ErrNoPlaceholder)
	}
	rest := rawURL[len(prefix):]

	for _, form := range encodedForms(query) {
		if idx := strings.Index(rest, form); idx >= 0 {
			return prefix + rest[:idx] + Placeholder + rest[idx+len(form):], nil
		}
	}
	return "", fmt.Errorf("synthesize %q: %w", rawURL, repository.ErrNoPlaceholder)
}

// encodedForms returns the spellings under which a query term may appear in a
// URL: verbatim, query-encoded (spaces as +) and path-encoded (spaces as %20).
func encodedForms(query string) []string {
	forms := []string{query}
	if qe := url.QueryEscape(query); qe != query {
		forms = append(forms, qe)
	}
	if pe := url.PathEscape(query); pe != query && pe != url.QueryEscape(query) {
		forms = append(forms, pe)
	}
	return forms
}

// Build substitutes the placeholder with the URL-encoded term, producing a
// fetchable URL. The encoding follows the placeholder's position: query-string
// placeholders get query encoding (spaces as +), path placeholders get path
// encoding (spaces as %20) — a + inside a path segment is a literal plus.
// Returns repository.ErrMalformedTemplate when the placeholder is absent;
// persisted templates should always carry one, but they may have been edited
// externally.
func Build(tpl, term string) (string, error) {
	idx := strings.Index(tpl, Placeholder)
	if idx < 0 {
		return "", fmt.Errorf("build %q: %w", tpl, repository.ErrMalformedTemplate)
	}
	encoded := url.QueryEscape(term)
	if q := strings.Index(tpl, "?"); q < 0 || idx < q {
		encoded = url.PathEscape(term)
	}
	return strings.ReplaceAll(tpl, Placeholder, encoded), nil
}

// Package parser extracts product listings from rendered e-commerce pages.
//
// No single extraction approach works across arbitrary sites, so strategies
// are tried in priority order: structured data (JSON-LD / microdata) first,
// then repeated-card detection, then a generic price-near-name fallback. The
// first strategy to yield at least one plausible record wins; later
// strategies are not consulted, so partial results never conflict.
package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/repository"
)

// rawProduct is the untyped field mapping a strategy yields before
// normalization. All fields are optional except name.
type rawProduct struct {
	name        string
	priceText   string
	origText    string
	productURL  string
	imageURL    string
	description string
	ratingText  string
	reviewText  string
	stockText   string
	brand       string
}

// strategy attempts to extract raw listings from a document. A nil or empty
// result means the strategy does not apply to this page.
type strategy interface {
	name() string
	attempt(doc *goquery.Document) []rawProduct
}

// Parser runs the strategy cascade. Zero-value is not usable; construct with New.
type Parser struct {
	strategies []strategy
}

func New() *Parser {
	return &Parser{
		strategies: []strategy{
			structuredDataStrategy{},
			repeatedCardStrategy{},
			fallbackStrategy{},
		},
	}
}

// Parse extracts product records from the rendered HTML of pageURL.
// Returns repository.ErrNoProducts when the page parsed but no strategy
// produced a plausible record; that is a normal outcome for a page with no
// matching listings, not a failure.
func (p *Parser) Parse(pageURL, html string) ([]*entity.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: bad page URL: %w", pageURL, err)
	}

	now := time.Now()
	for _, s := range p.strategies {
		raws := s.attempt(doc)
		if len(raws) == 0 {
			continue
		}
		var records []*entity.ProductRecord
		for _, raw := range raws {
			rec := normalize(raw, base, pageURL, now)
			if plausible(rec) {
				records = append(records, rec)
			}
		}
		if len(records) > 0 {
			slog.Debug("strategy matched", "strategy", s.name(), "url", pageURL, "records", len(records))
			return records, nil
		}
	}
	return nil, fmt.Errorf("parse %s: %w", pageURL, repository.ErrNoProducts)
}

// plausible is the minimal validity check: a non-empty name and at least one
// of price or product URL.
func plausible(rec *entity.ProductRecord) bool {
	return rec.Name != "" && (rec.CurrentPrice > 0 || rec.ProductURL != "")
}

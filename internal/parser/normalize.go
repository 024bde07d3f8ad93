package parser

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/pkg/utils"
)

var (
	numberRe = regexp.MustCompile(`\d[\d.,\s]*`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// normalize maps a raw strategy result onto the ProductRecord shape:
// currency strings become numeric prices, relative URLs become absolute,
// rating is clamped to [0,5], stock defaults to unknown.
func normalize(raw rawProduct, base *url.URL, pageURL string, now time.Time) *entity.ProductRecord {
	rec := &entity.ProductRecord{
		PlatformURL: pageURL,
		Name:        cleanText(raw.name),
		Description: cleanText(raw.description),
		Brand:       cleanText(raw.brand),
		StockStatus: stockStatus(raw.stockText),
		ExtractedAt: now,
	}

	rec.CurrentPrice = parsePrice(raw.priceText)
	rec.OriginalPrice = parsePrice(raw.origText)
	if rec.OriginalPrice == 0 {
		rec.OriginalPrice = rec.CurrentPrice
	}

	if raw.productURL != "" {
		if abs, err := utils.ToAbsoluteURL(base, raw.productURL); err == nil {
			rec.ProductURL = abs
		}
	}
	if raw.imageURL != "" {
		if abs, err := utils.ToAbsoluteURL(base, raw.imageURL); err == nil {
			rec.ImageURL = abs
		}
	}

	rec.Rating = clampRating(raw.ratingText)
	rec.ReviewCount = parseCount(raw.reviewText)
	return rec
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// parsePrice extracts a numeric amount from a currency string like
// "$1,299.99", "1.299,99 €" or "R$ 42". Returns 0 when no amount is found.
func parsePrice(s string) float64 {
	match := spaceRe.ReplaceAllString(numberRe.FindString(s), "")
	if match == "" {
		return 0
	}

	lastDot := strings.LastIndex(match, ".")
	lastComma := strings.LastIndex(match, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both separators present: the later one is the decimal mark.
		if lastComma > lastDot {
			match = strings.ReplaceAll(match, ".", "")
			match = strings.Replace(match, ",", ".", 1)
		} else {
			match = strings.ReplaceAll(match, ",", "")
		}
	case lastComma >= 0:
		// Comma only: decimal mark if followed by exactly two digits,
		// thousands separator otherwise.
		if len(match)-lastComma == 3 && strings.Count(match, ",") == 1 {
			match = strings.Replace(match, ",", ".", 1)
		} else {
			match = strings.ReplaceAll(match, ",", "")
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// clampRating parses a rating value and clamps it into [0, 5].
func clampRating(s string) float64 {
	match := numberRe.FindString(strings.ReplaceAll(s, ",", "."))
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(match), "."), 64)
	if err != nil || v < 0 {
		return 0
	}
	return min(v, 5)
}

// parseCount extracts an integer count like "1,234 reviews".
func parseCount(s string) int {
	match := spaceRe.ReplaceAllString(strings.NewReplacer(",", "", ".", "").Replace(numberRe.FindString(s)), "")
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// stockStatus maps availability text to the tri-state stock flag. Unknown is
// deliberately preferred over false when the page gives no signal.
func stockStatus(s string) string {
	t := strings.ToLower(s)
	switch {
	case strings.Contains(t, "outofstock") || strings.Contains(t, "out of stock") ||
		strings.Contains(t, "sold out") || strings.Contains(t, "unavailable"):
		return entity.StockOutOfStock
	case strings.Contains(t, "instock") || strings.Contains(t, "in stock") ||
		strings.Contains(t, "available"):
		return entity.StockInStock
	default:
		return entity.StockUnknown
	}
}

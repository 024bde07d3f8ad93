package parser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// priceLikeRe matches text that plausibly denotes a price: a currency symbol
// or code adjacent to a number.
var priceLikeRe = regexp.MustCompile(`(?i)([$€£₹¥]|R\$|USD|EUR|GBP|INR)\s*\d[\d.,\s]*|\d[\d.,]*\s*([$€£₹¥]|USD|EUR|GBP|INR)`)

// repeatedCardStrategy detects the listing-grid shape most shops share: a
// container with many structurally similar children, each carrying a price,
// a link and usually an image. Sites without structured data almost always
// render results this way.
type repeatedCardStrategy struct{}

func (repeatedCardStrategy) name() string { return "repeated_cards" }

// Card container selectors tried in order of specificity.
var cardSelectors = []string{
	`[class*="product-card"]`,
	`[class*="product-item"]`,
	`[class*="product"]`,
	`[class*="search-result"]`,
	`[class*="listing"]`,
	`li[class*="item"]`,
	`article`,
}

func (repeatedCardStrategy) attempt(doc *goquery.Document) []rawProduct {
	for _, selector := range cardSelectors {
		sel := doc.Find(selector)
		if sel.Length() < 2 {
			continue
		}
		var raws []rawProduct
		sel.Each(func(_ int, card *goquery.Selection) {
			// Skip wrappers that themselves contain matched cards; we want
			// the leaves of the repetition.
			if card.Find(selector).Length() > 0 {
				return
			}
			if raw, ok := extractCard(card); ok {
				raws = append(raws, raw)
			}
		})
		// Require repetition: one lone match is more likely a nav widget or
		// a detail page than a listing grid.
		if len(raws) >= 2 {
			return raws
		}
	}
	return nil
}

func extractCard(card *goquery.Selection) (rawProduct, bool) {
	price := priceLikeRe.FindString(card.Text())
	if price == "" {
		return rawProduct{}, false
	}

	raw := rawProduct{priceText: price}

	if link := card.Find("a[href]").First(); link.Length() > 0 {
		raw.productURL, _ = link.Attr("href")
	}
	raw.name = cardName(card)
	if raw.name == "" {
		return rawProduct{}, false
	}

	if img := card.Find("img").First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok && src != "" {
			raw.imageURL = src
		} else if dataSrc, ok := img.Attr("data-src"); ok {
			raw.imageURL = dataSrc // lazy-loaded
		}
	}

	// A second, struck-through price is usually the pre-discount original.
	card.Find(`del, s, [class*="original"], [class*="was-price"], [class*="strike"]`).
		EachWithBreak(func(_ int, old *goquery.Selection) bool {
			if m := priceLikeRe.FindString(old.Text()); m != "" {
				raw.origText = m
				return false
			}
			return true
		})

	if stock := card.Find(`[class*="stock"], [class*="availability"]`).First(); stock.Length() > 0 {
		raw.stockText = stock.Text()
	}
	if rating := card.Find(`[class*="rating"], [class*="stars"]`).First(); rating.Length() > 0 {
		if label, ok := rating.Attr("aria-label"); ok && label != "" {
			raw.ratingText = label
		} else {
			raw.ratingText = rating.Text()
		}
	}
	if reviews := card.Find(`[class*="review"]`).First(); reviews.Length() > 0 {
		raw.reviewText = reviews.Text()
	}
	if brand := card.Find(`[class*="brand"]`).First(); brand.Length() > 0 {
		raw.brand = brand.Text()
	}
	return raw, true
}

// cardName picks the most title-like text in a card: heading, link title
// attribute, image alt, then the longest anchor text.
func cardName(card *goquery.Selection) string {
	if h := card.Find("h1, h2, h3, h4, h5").First(); h.Length() > 0 {
		if name := cleanText(h.Text()); name != "" {
			return name
		}
	}
	if title, ok := card.Find("a[title]").First().Attr("title"); ok {
		if name := cleanText(title); name != "" {
			return name
		}
	}
	if alt, ok := card.Find("img[alt]").First().Attr("alt"); ok {
		if name := cleanText(alt); name != "" {
			return name
		}
	}
	best := ""
	card.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := cleanText(a.Text())
		if len(text) > len(best) && !priceLikeRe.MatchString(text) {
			best = text
		}
	})
	return best
}

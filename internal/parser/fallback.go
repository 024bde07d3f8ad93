package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// fallbackStrategy is the last resort for pages with no structured data and
// no recognizable card grid: find price-looking text, then climb a few
// ancestors looking for name-looking text and an image nearby. Noisy by
// nature, so it only runs when everything else came up empty.
type fallbackStrategy struct{}

func (fallbackStrategy) name() string { return "generic_fallback" }

const maxClimb = 3

func (fallbackStrategy) attempt(doc *goquery.Document) []rawProduct {
	var raws []rawProduct
	seen := map[string]bool{}

	doc.Find("span, div, p, b, strong").Each(func(_ int, s *goquery.Selection) {
		// Only leaf-ish nodes: a price container, not a page section.
		if s.Children().Length() > 2 {
			return
		}
		price := priceLikeRe.FindString(s.Text())
		if price == "" {
			return
		}

		node := s
		for i := 0; i < maxClimb; i++ {
			node = node.Parent()
			if node.Length() == 0 {
				return
			}
			name := cardName(node)
			if name == "" {
				continue
			}
			if seen[name] {
				return
			}
			seen[name] = true

			raw := rawProduct{name: name, priceText: price}
			if link := node.Find("a[href]").First(); link.Length() > 0 {
				raw.productURL, _ = link.Attr("href")
			}
			if img := node.Find("img[src]").First(); img.Length() > 0 {
				raw.imageURL, _ = img.Attr("src")
			}
			raws = append(raws, raw)
			return
		}
	})
	return raws
}

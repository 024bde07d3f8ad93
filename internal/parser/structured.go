package parser

import (
	"encoding/json"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// structuredDataStrategy reads schema.org product markup: JSON-LD blocks
// first, then HTML microdata. Highest priority because sites that publish it
// describe their own listings unambiguously.
type structuredDataStrategy struct{}

func (structuredDataStrategy) name() string { return "structured_data" }

func (structuredDataStrategy) attempt(doc *goquery.Document) []rawProduct {
	raws := jsonLDProducts(doc)
	if len(raws) == 0 {
		raws = microdataProducts(doc)
	}
	return raws
}

func jsonLDProducts(doc *goquery.Document) []rawProduct {
	var raws []rawProduct
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return // malformed blocks are common; just move on
		}
		collectLDProducts(payload, &raws)
	})
	return raws
}

// collectLDProducts walks an arbitrary JSON-LD value, descending into
// @graph, ItemList elements and plain arrays, collecting Product nodes.
func collectLDProducts(node any, out *[]rawProduct) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			collectLDProducts(item, out)
		}
	case map[string]any:
		if ldType(v) == "Product" {
			*out = append(*out, ldProduct(v))
			return
		}
		for _, key := range []string{"@graph", "itemListElement", "item"} {
			if child, ok := v[key]; ok {
				collectLDProducts(child, out)
			}
		}
	}
}

func ldType(m map[string]any) string {
	switch t := m["@type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Product" {
				return s
			}
		}
	}
	return ""
}

func ldProduct(m map[string]any) rawProduct {
	raw := rawProduct{
		name:        ldString(m["name"]),
		description: ldString(m["description"]),
		productURL:  ldString(m["url"]),
		imageURL:    ldImage(m["image"]),
		brand:       ldBrand(m["brand"]),
	}

	if offers, ok := m["offers"].(map[string]any); ok {
		raw.priceText = ldString(offers["price"])
		if raw.priceText == "" {
			raw.priceText = ldString(offers["lowPrice"])
		}
		raw.stockText = ldString(offers["availability"])
		if raw.productURL == "" {
			raw.productURL = ldString(offers["url"])
		}
	}
	if high, ok := m["offers"].(map[string]any); ok && raw.origText == "" {
		raw.origText = ldString(high["highPrice"])
	}
	if rating, ok := m["aggregateRating"].(map[string]any); ok {
		raw.ratingText = ldString(rating["ratingValue"])
		raw.reviewText = ldString(rating["reviewCount"])
		if raw.reviewText == "" {
			raw.reviewText = ldString(rating["ratingCount"])
		}
	}
	return raw
}

// ldString renders a JSON-LD scalar as text; numbers arrive as float64.
func ldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

func ldImage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			return ldString(t[0])
		}
	case map[string]any:
		return ldString(t["url"])
	}
	return ""
}

func ldBrand(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		return ldString(t["name"])
	}
	return ""
}

func microdataProducts(doc *goquery.Document) []rawProduct {
	var raws []rawProduct
	doc.Find(`[itemtype*="schema.org/Product"]`).Each(func(_ int, s *goquery.Selection) {
		raw := rawProduct{
			name:        itemprop(s, "name"),
			priceText:   itemprop(s, "price"),
			description: itemprop(s, "description"),
			brand:       itemprop(s, "brand"),
			ratingText:  itemprop(s, "ratingValue"),
			reviewText:  itemprop(s, "reviewCount"),
			stockText:   itemprop(s, "availability"),
		}
		if link := s.Find(`a[itemprop="url"]`).First(); link.Length() > 0 {
			raw.productURL, _ = link.Attr("href")
		}
		if img := s.Find(`img[itemprop="image"], [itemprop="image"]`).First(); img.Length() > 0 {
			if src, ok := img.Attr("src"); ok {
				raw.imageURL = src
			} else if content, ok := img.Attr("content"); ok {
				raw.imageURL = content
			}
		}
		raws = append(raws, raw)
	})
	return raws
}

// itemprop returns the value of an itemprop node: content attribute when
// present (meta tags), element text otherwise.
func itemprop(s *goquery.Selection, prop string) string {
	node := s.Find(`[itemprop="` + prop + `"]`).First()
	if node.Length() == 0 {
		return ""
	}
	if content, ok := node.Attr("content"); ok && content != "" {
		return content
	}
	if href, ok := node.Attr("href"); ok && prop == "availability" {
		return href
	}
	return node.Text()
}

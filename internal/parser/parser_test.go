package parser

import (
	"errors"
	"testing"

	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/repository"
)

const pageURL = "https://shop.example/search?q=laptop"

func TestParseJSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "ItemList",
  "itemListElement": [
    {
      "@type": "ListItem",
      "item": {
        "@type": "Product",
        "name": "ProBook 14",
        "url": "/p/probook-14",
        "image": "/img/probook.jpg",
        "brand": {"@type": "Brand", "name": "Acme"},
        "offers": {"@type": "Offer", "price": 1299.99, "availability": "https://schema.org/InStock"},
        "aggregateRating": {"ratingValue": 4.5, "reviewCount": 231}
      }
    },
    {
      "@type": "ListItem",
      "item": {
        "@type": "Product",
        "name": "UltraSlim 13",
        "offers": {"@type": "Offer", "price": "999", "availability": "https://schema.org/OutOfStock"}
      }
    }
  ]
}
</script>
</head><body></body></html>`

	records, err := New().Parse(pageURL, html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Name != "ProBook 14" {
		t.Errorf("Name = %q, want %q", first.Name, "ProBook 14")
	}
	if first.CurrentPrice != 1299.99 {
		t.Errorf("CurrentPrice = %v, want 1299.99", first.CurrentPrice)
	}
	if first.ProductURL != "https://shop.example/p/probook-14" {
		t.Errorf("ProductURL = %q, want absolute URL", first.ProductURL)
	}
	if first.ImageURL != "https://shop.example/img/probook.jpg" {
		t.Errorf("ImageURL = %q, want absolute URL", first.ImageURL)
	}
	if first.Brand != "Acme" {
		t.Errorf("Brand = %q, want %q", first.Brand, "Acme")
	}
	if first.StockStatus != entity.StockInStock {
		t.Errorf("StockStatus = %q, want %q", first.StockStatus, entity.StockInStock)
	}
	if first.Rating != 4.5 {
		t.Errorf("Rating = %v, want 4.5", first.Rating)
	}
	if first.ReviewCount != 231 {
		t.Errorf("ReviewCount = %d, want 231", first.ReviewCount)
	}
	if first.PlatformURL != pageURL {
		t.Errorf("PlatformURL = %q, want %q", first.PlatformURL, pageURL)
	}

	second := records[1]
	if second.CurrentPrice != 999 {
		t.Errorf("second CurrentPrice = %v, want 999", second.CurrentPrice)
	}
	if second.StockStatus != entity.StockOutOfStock {
		t.Errorf("second StockStatus = %q, want %q", second.StockStatus, entity.StockOutOfStock)
	}
}

func TestParseRepeatedCards(t *testing.T) {
	html := `<html><body><div class="results">
<div class="product-card">
  <h3>Gaming Laptop X</h3>
  <span class="price">$1,299.99</span>
  <del>$1,499.99</del>
  <a href="/products/laptop-x">View</a>
  <img src="/img/laptop-x.jpg" alt="Gaming Laptop X">
  <span class="stock-label">In stock</span>
</div>
<div class="product-card">
  <h3>Office Laptop Y</h3>
  <span class="price">$549.00</span>
  <a href="/products/laptop-y">View</a>
  <img src="/img/laptop-y.jpg" alt="Office Laptop Y">
</div>
</div></body></html>`

	records, err := New().Parse(pageURL, html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Name != "Gaming Laptop X" {
		t.Errorf("Name = %q, want %q", first.Name, "Gaming Laptop X")
	}
	if first.CurrentPrice != 1299.99 {
		t.Errorf("CurrentPrice = %v, want 1299.99", first.CurrentPrice)
	}
	if first.OriginalPrice != 1499.99 {
		t.Errorf("OriginalPrice = %v, want 1499.99", first.OriginalPrice)
	}
	if first.ProductURL != "https://shop.example/products/laptop-x" {
		t.Errorf("ProductURL = %q, want absolute URL", first.ProductURL)
	}
	if first.StockStatus != entity.StockInStock {
		t.Errorf("StockStatus = %q, want %q", first.StockStatus, entity.StockInStock)
	}

	second := records[1]
	if second.CurrentPrice != 549 {
		t.Errorf("second CurrentPrice = %v, want 549", second.CurrentPrice)
	}
	// No discount shown, original price mirrors the current one.
	if second.OriginalPrice != 549 {
		t.Errorf("second OriginalPrice = %v, want 549", second.OriginalPrice)
	}
	if second.StockStatus != entity.StockUnknown {
		t.Errorf("second StockStatus = %q, want %q", second.StockStatus, entity.StockUnknown)
	}
}

func TestParseFallback(t *testing.T) {
	html := `<html><body>
<div>
  <span>$49.99</span>
  <h3>Desk Lamp</h3>
  <a href="/p/desk-lamp">view</a>
</div>
</body></html>`

	records, err := New().Parse(pageURL, html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Name != "Desk Lamp" {
		t.Errorf("Name = %q, want %q", records[0].Name, "Desk Lamp")
	}
	if records[0].CurrentPrice != 49.99 {
		t.Errorf("CurrentPrice = %v, want 49.99", records[0].CurrentPrice)
	}
}

func TestParseNoProducts(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty page", `<html><body></body></html>`},
		{"text only", `<html><body><p>No results found for your search.</p></body></html>`},
		{"single card is not a grid", `<html><body><article><h2>About us</h2><p>Founded in 1999.</p></article></body></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(pageURL, tt.html)
			if !errors.Is(err, repository.ErrNoProducts) {
				t.Fatalf("Parse error = %v, want ErrNoProducts", err)
			}
		})
	}
}

func TestStructuredDataWinsOverCards(t *testing.T) {
	// Page carries both JSON-LD and a card grid; structured data is
	// authoritative and the grid must not be consulted.
	html := `<html><head>
<script type="application/ld+json">
{"@type": "Product", "name": "Canonical Widget", "offers": {"price": "10.00"}}
</script>
</head><body>
<div class="product-card"><h3>Noise A</h3><span>$1</span><a href="/a">a</a></div>
<div class="product-card"><h3>Noise B</h3><span>$2</span><a href="/b">b</a></div>
</body></html>`

	records, err := New().Parse(pageURL, html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want the single structured record", len(records))
	}
	if records[0].Name != "Canonical Widget" {
		t.Fatalf("Name = %q, want %q", records[0].Name, "Canonical Widget")
	}
}

func TestParseMicrodata(t *testing.T) {
	html := `<html><body>
<div itemscope itemtype="https://schema.org/Product">
  <span itemprop="name">Wireless Mouse</span>
  <meta itemprop="price" content="24.90">
  <a itemprop="url" href="/p/mouse">details</a>
  <link itemprop="availability" href="https://schema.org/InStock">
</div>
</body></html>`

	records, err := New().Parse(pageURL, html)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Name != "Wireless Mouse" {
		t.Errorf("Name = %q, want %q", rec.Name, "Wireless Mouse")
	}
	if rec.CurrentPrice != 24.90 {
		t.Errorf("CurrentPrice = %v, want 24.90", rec.CurrentPrice)
	}
	if rec.StockStatus != entity.StockInStock {
		t.Errorf("StockStatus = %q, want %q", rec.StockStatus, entity.StockInStock)
	}
}

package entity

// StoreStats holds row counts per table, served by the stats endpoint.
type StoreStats struct {
	Categories    int64 `json:"categories"`
	Products      int64 `json:"products"`
	Templates     int64 `json:"templates"`
	Records       int64 `json:"product_records"`
	ProcessedURLs int64 `json:"processed_urls"`
}

package domain

import "time"

// StoreOffer is the latest observation for one store's listing of a book,
// as returned by the comparison query.
type StoreOffer struct {
	Store      string    `json:"store"`
	URL        string    `json:"url"`
	PriceGEL   *float64  `json:"price_gel"`
	InStock    *bool     `json:"in_stock"`
	CapturedAt time.Time `json:"captured_at"`
}

// BookComparison pairs a book with its per-store offers, ranked by
// availability then price.
type BookComparison struct {
	Book   Book         `json:"book"`
	Offers []StoreOffer `json:"offers"`
}

// ComparedBook is one row of the cross-store price grid: the latest price
// per store for a book, with missing stores as null.
type ComparedBook struct {
	Title  *string             `json:"title"`
	ISBN13 string              `json:"isbn"`
	Prices map[string]*float64 `json:"prices"`
}

// BookSummary is a search result row.
type BookSummary struct {
	ID     int64   `json:"id"`
	ISBN13 string  `json:"isbn13"`
	Title  *string `json:"title"`
}

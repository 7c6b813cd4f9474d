package domain

import "time"

// Book is a physical/edition-level work identified by its ISBN-13.
// Title is best-effort: it is filled in the first time a scrape carries one
// and never regressed to null afterwards. TitleNorm is a derived, folded
// form of Title used only for search matching, never for identity.
type Book struct {
	ID        int64     `json:"id" db:"id"`
	ISBN13    string    `json:"isbn13" db:"isbn13"`
	Title     *string   `json:"title" db:"title"`
	TitleNorm *string   `json:"title_norm" db:"title_norm"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// StoreProduct is one store's product page for one item, unique per
// (store, store_product_id). BookID is a reference, not ownership: many
// listings may point at the same book, and a listing stays unlinked when no
// ISBN was ever extracted for it.
type StoreProduct struct {
	ID             int64     `json:"id" db:"id"`
	Store          string    `json:"store" db:"store"`
	StoreProductID string    `json:"store_product_id" db:"store_product_id"`
	URL            string    `json:"url" db:"url"`
	BookID         *int64    `json:"book_id" db:"book_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// OfferRecord is one immutable, timestamped price/availability observation
// retained for a listing. Rows are append-only; a row exists only because it
// differed from its predecessor. InStock is tri-state: nil means unknown,
// which is a meaningful value, not missing data.
type OfferRecord struct {
	ID             int64     `json:"id" db:"id"`
	StoreProductID int64     `json:"store_product_id" db:"store_product_id"`
	CapturedAt     time.Time `json:"captured_at" db:"captured_at"`
	PriceGEL       *float64  `json:"price_gel" db:"price_gel"`
	InStock        *bool     `json:"in_stock" db:"in_stock"`
}

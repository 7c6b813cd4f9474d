package domain

// ProductRef points at one product page discovered on a store's listing
// pages, before the page itself has been fetched.
type ProductRef struct {
	Store          string
	StoreProductID string
	URL            string
}

// Observation is one scrape's snapshot of a listing, as handed to ingestion.
// ISBN is the raw extracted string and is validated during ingestion; an
// invalid ISBN is treated as absent, never as an error.
type Observation struct {
	Store          string   `json:"store"`
	StoreProductID string   `json:"store_product_id"`
	URL            string   `json:"url"`
	Title          *string  `json:"title"`
	ISBN           *string  `json:"isbn"`
	PriceGEL       *float64 `json:"price_gel"`
	InStock        *bool    `json:"in_stock"`
}

// Changed reports whether the observation differs from the latest recorded
// history row. A nil last row always counts as changed. Comparison is exact
// value equality: null vs non-null differs, and the three stock states
// (true / false / unknown) are pairwise distinct.
func (o Observation) Changed(last *OfferRecord) bool {
	if last == nil {
		return true
	}
	return !floatPtrEqual(o.PriceGEL, last.PriceGEL) || !boolPtrEqual(o.InStock, last.InStock)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

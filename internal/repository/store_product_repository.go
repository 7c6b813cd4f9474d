package repository

import (
	"context"
	"fmt"
)

// StoreProductRepository resolves (store, store_product_id) pairs to durable
// listing identities.
type StoreProductRepository interface {
	Upsert(ctx context.Context, store, storeProductID, url string, bookID *int64) (int64, error)
}

type storeProductRepository struct {
	db DBTX
}

// NewStoreProductRepository creates a new instance of StoreProductRepository
func NewStoreProductRepository(db DBTX) StoreProductRepository {
	return &storeProductRepository{db: db}
}

// Upsert atomically inserts or fetches the listing. The URL is always
// refreshed to the latest seen value; book_id keeps an existing non-null
// link, so a later scrape that failed to extract an ISBN never unlinks the
// listing from its book.
func (r *storeProductRepository) Upsert(ctx context.Context, store, storeProductID, url string, bookID *int64) (int64, error) {
	query := `
		INSERT INTO store_products (store, store_product_id, url, book_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store, store_product_id) DO UPDATE SET
			url = EXCLUDED.url,
			book_id = COALESCE(EXCLUDED.book_id, store_products.book_id)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, store, storeProductID, url, bookID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert store product: %w", err)
	}

	return id, nil
}

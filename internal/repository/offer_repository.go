package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bookscout/internal/domain"
)

// OfferRepository holds the append-only history ledger primitives. The
// change-gating decision itself lives in the ingestion service; this layer
// only knows how to read the latest row and append a new one.
type OfferRepository interface {
	Latest(ctx context.Context, storeProductID int64) (*domain.OfferRecord, error)
	Append(ctx context.Context, storeProductID int64, priceGEL *float64, inStock *bool) error
}

type offerRepository struct {
	db DBTX
}

// NewOfferRepository creates a new instance of OfferRepository
func NewOfferRepository(db DBTX) OfferRepository {
	return &offerRepository{db: db}
}

// Latest returns the most recent history row for a listing, or nil when the
// listing has no history yet. Ordering is captured_at desc with insertion
// order (id) as the tie-breaker.
func (r *offerRepository) Latest(ctx context.Context, storeProductID int64) (*domain.OfferRecord, error) {
	query := `
		SELECT id, store_product_id, captured_at, price_gel, in_stock
		FROM offers
		WHERE store_product_id = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`

	rec := &domain.OfferRecord{}
	err := r.db.QueryRowContext(ctx, query, storeProductID).Scan(
		&rec.ID,
		&rec.StoreProductID,
		&rec.CapturedAt,
		&rec.PriceGEL,
		&rec.InStock,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest offer: %w", err)
	}

	return rec, nil
}

// Append inserts a new history row stamped with the database's current time.
func (r *offerRepository) Append(ctx context.Context, storeProductID int64, priceGEL *float64, inStock *bool) error {
	query := `
		INSERT INTO offers (store_product_id, price_gel, in_stock)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, storeProductID, priceGEL, inStock); err != nil {
		return fmt.Errorf("failed to append offer: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"
	"sort"

	"bookscout/internal/domain"
)

// ComparisonRepository serves the cross-store read paths built on the
// latest-row-per-listing primitive.
type ComparisonRepository interface {
	CompareByISBN(ctx context.Context, isbn13 string) (*domain.BookComparison, error)
	ListCompared(ctx context.Context, stores []string, limit int) ([]domain.ComparedBook, error)
}

type comparisonRepository struct {
	db    DBTX
	books BookRepository
}

// NewComparisonRepository creates a new instance of ComparisonRepository
func NewComparisonRepository(db DBTX) ComparisonRepository {
	return &comparisonRepository{db: db, books: NewBookRepository(db)}
}

// CompareByISBN returns the book plus the most recent observation for every
// linked listing. Listings with unknown stock sort last, in-stock sorts
// before out-of-stock, and within each stock group price ascends with nulls
// last. A listing that has no history yet simply contributes no row.
func (r *comparisonRepository) CompareByISBN(ctx context.Context, isbn13 string) (*domain.BookComparison, error) {
	book, err := r.books.FindByISBN(ctx, isbn13)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT sp.store, sp.url, o.price_gel, o.in_stock, o.captured_at
		FROM store_products sp
		JOIN LATERAL (
			SELECT price_gel, in_stock, captured_at
			FROM offers
			WHERE store_product_id = sp.id
			ORDER BY captured_at DESC, id DESC
			LIMIT 1
		) o ON TRUE
		WHERE sp.book_id = $1
		ORDER BY (o.in_stock IS NULL) ASC, o.in_stock DESC, o.price_gel ASC
	`

	rows, err := r.db.QueryContext(ctx, query, book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers for comparison: %w", err)
	}
	defer rows.Close()

	offers := []domain.StoreOffer{}
	for rows.Next() {
		var o domain.StoreOffer
		if err := rows.Scan(&o.Store, &o.URL, &o.PriceGEL, &o.InStock, &o.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparison offers: %w", err)
	}

	return &domain.BookComparison{Book: *book, Offers: offers}, nil
}

// ListCompared projects the latest price per (book, store) into a per-store
// grid. Books covered by more stores come first, ties broken by title.
// When one store has several listings of the same book the highest latest
// price wins, matching a MAX() pivot.
func (r *comparisonRepository) ListCompared(ctx context.Context, stores []string, limit int) ([]domain.ComparedBook, error) {
	query := `
		WITH latest_offers AS (
			SELECT DISTINCT ON (store_product_id)
				store_product_id, price_gel
			FROM offers
			ORDER BY store_product_id, captured_at DESC, id DESC
		)
		SELECT b.isbn13, b.title, sp.store, lo.price_gel
		FROM books b
		JOIN store_products sp ON sp.book_id = b.id
		JOIN latest_offers lo ON lo.store_product_id = sp.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query price grid: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool, len(stores))
	for _, s := range stores {
		known[s] = true
	}

	byISBN := make(map[string]*domain.ComparedBook)
	coveredBy := make(map[string]map[string]bool)
	order := []string{}
	for rows.Next() {
		var (
			isbn13 string
			title  *string
			store  string
			price  *float64
		)
		if err := rows.Scan(&isbn13, &title, &store, &price); err != nil {
			return nil, fmt.Errorf("failed to scan price grid row: %w", err)
		}
		if !known[store] {
			continue
		}

		cb, ok := byISBN[isbn13]
		if !ok {
			cb = &domain.ComparedBook{ISBN13: isbn13, Title: title, Prices: make(map[string]*float64, len(stores))}
			for _, s := range stores {
				cb.Prices[s] = nil
			}
			byISBN[isbn13] = cb
			coveredBy[isbn13] = make(map[string]bool, len(stores))
			order = append(order, isbn13)
		}
		// a latest offer with an unknown price still counts as coverage,
		// it just leaves the store's column null
		coveredBy[isbn13][store] = true
		if price == nil {
			continue
		}
		if cur := cb.Prices[store]; cur == nil || *price > *cur {
			cb.Prices[store] = price
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price grid: %w", err)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := byISBN[order[i]], byISBN[order[j]]
		ca, cbn := len(coveredBy[order[i]]), len(coveredBy[order[j]])
		if ca != cbn {
			return ca > cbn
		}
		// title ascending, untitled books last
		switch {
		case a.Title == nil:
			return false
		case b.Title == nil:
			return true
		default:
			return *a.Title < *b.Title
		}
	})

	if len(order) > limit {
		order = order[:limit]
	}

	grid := make([]domain.ComparedBook, 0, len(order))
	for _, isbn13 := range order {
		grid = append(grid, *byISBN[isbn13])
	}

	return grid, nil
}

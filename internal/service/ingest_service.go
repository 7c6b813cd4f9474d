package service

import (
	"context"
	"database/sql"
	"fmt"

	"bookscout/internal/domain"
	"bookscout/internal/normalize"
	"bookscout/internal/repository"

	"go.uber.org/zap"
)

// IngestResult reports what one ingestion did, for observability and tests.
type IngestResult struct {
	Appended bool
}

// IngestService absorbs one scraped observation as a single all-or-nothing
// transaction: resolve the book (when a valid ISBN-13 is present), resolve
// the listing, then append a history row only if price or stock changed.
type IngestService interface {
	Ingest(ctx context.Context, obs domain.Observation) (IngestResult, error)
}

type ingestService struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIngestService creates a new instance of IngestService
func NewIngestService(db *sql.DB, logger *zap.Logger) IngestService {
	return &ingestService{db: db, logger: logger}
}

// Ingest runs the three resolution steps inside one transaction. Any
// failure rolls the whole observation back; the caller retries it on the
// next scrape cycle. An invalid or missing ISBN is not a failure; the
// observation is recorded with the listing left unlinked.
func (s *ingestService) Ingest(ctx context.Context, obs domain.Observation) (IngestResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	books := repository.NewBookRepository(tx)
	listings := repository.NewStoreProductRepository(tx)
	offers := repository.NewOfferRepository(tx)

	var bookID *int64
	if obs.ISBN != nil {
		isbn13 := normalize.CleanISBN(*obs.ISBN)
		if normalize.ValidISBN13(isbn13) {
			id, err := books.Upsert(ctx, isbn13, obs.Title)
			if err != nil {
				return IngestResult{}, err
			}
			bookID = &id
		} else {
			s.logger.Debug("Observation carries unusable ISBN, leaving listing unlinked",
				zap.String("store", obs.Store),
				zap.String("store_product_id", obs.StoreProductID),
				zap.String("isbn", *obs.ISBN),
			)
		}
	}

	listingID, err := listings.Upsert(ctx, obs.Store, obs.StoreProductID, obs.URL, bookID)
	if err != nil {
		return IngestResult{}, err
	}

	last, err := offers.Latest(ctx, listingID)
	if err != nil {
		return IngestResult{}, err
	}

	appended := false
	if obs.Changed(last) {
		if err := offers.Append(ctx, listingID, obs.PriceGEL, obs.InStock); err != nil {
			return IngestResult{}, err
		}
		appended = true
	}

	if err := tx.Commit(); err != nil {
		return IngestResult{}, fmt.Errorf("failed to commit ingest transaction: %w", err)
	}

	return IngestResult{Appended: appended}, nil
}

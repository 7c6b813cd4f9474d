package service

import (
	"context"
	"database/sql"

	"bookscout/internal/domain"
	"bookscout/internal/repository"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	DefaultGridLimit   = 100
)

// CatalogService is the read-side surface: comparison by ISBN, free-text
// search, and the cross-store price grid. "Not found" is a normal result
// (repository.ErrBookNotFound), distinct from storage faults.
type CatalogService interface {
	CompareByISBN(ctx context.Context, isbn13 string) (*domain.BookComparison, error)
	Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error)
	ListCompared(ctx context.Context, limit int) ([]domain.ComparedBook, error)
}

type catalogService struct {
	books      repository.BookRepository
	comparison repository.ComparisonRepository
	stores     []string
}

// NewCatalogService creates a new instance of CatalogService. stores is the
// fixed column set of the price grid.
func NewCatalogService(db *sql.DB, stores []string) CatalogService {
	return &catalogService{
		books:      repository.NewBookRepository(db),
		comparison: repository.NewComparisonRepository(db),
		stores:     stores,
	}
}

func (s *catalogService) CompareByISBN(ctx context.Context, isbn13 string) (*domain.BookComparison, error) {
	return s.comparison.CompareByISBN(ctx, isbn13)
}

func (s *catalogService) Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error) {
	return s.books.Search(ctx, query, clampLimit(limit, DefaultSearchLimit))
}

func (s *catalogService) ListCompared(ctx context.Context, limit int) ([]domain.ComparedBook, error) {
	return s.comparison.ListCompared(ctx, s.stores, clampLimit(limit, DefaultGridLimit))
}

// clampLimit bounds a caller-supplied limit to [1, MaxSearchLimit], with 0
// meaning "use the default".
func clampLimit(limit, def int) int {
	switch {
	case limit == 0:
		return def
	case limit < 1:
		return 1
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bookscout/internal/domain"
	"bookscout/internal/normalize"
)

// BookRepository resolves ISBN-13s to durable book identities and serves
// the book-level read paths.
type BookRepository interface {
	Upsert(ctx context.Context, isbn13 string, title *string) (int64, error)
	FindByISBN(ctx context.Context, isbn13 string) (*domain.Book, error)
	Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error)
}

type bookRepository struct {
	db DBTX
}

// NewBookRepository creates a new instance of BookRepository
func NewBookRepository(db DBTX) BookRepository {
	return &bookRepository{db: db}
}

// Upsert atomically inserts or fetches the book for an already-validated
// ISBN-13. Title and its normalized form are coalesced independently:
// existing non-null values win, so a later scrape without a title never
// erases a known one. Safe under concurrent callers racing on the same
// ISBN, since conflict resolution happens inside the single statement.
func (r *bookRepository) Upsert(ctx context.Context, isbn13 string, title *string) (int64, error) {
	var titleNorm *string
	if title != nil {
		if tn := normalize.Title(*title); tn != "" {
			titleNorm = &tn
		}
	}

	query := `
		INSERT INTO books (isbn13, title, title_norm)
		VALUES ($1, $2, $3)
		ON CONFLICT (isbn13) DO UPDATE SET
			title = COALESCE(EXCLUDED.title, books.title),
			title_norm = COALESCE(EXCLUDED.title_norm, books.title_norm)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, isbn13, title, titleNorm).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert book: %w", err)
	}

	return id, nil
}

// FindByISBN retrieves a book by its ISBN-13.
func (r *bookRepository) FindByISBN(ctx context.Context, isbn13 string) (*domain.Book, error) {
	query := `
		SELECT id, isbn13, title, title_norm, created_at
		FROM books
		WHERE isbn13 = $1
	`

	book := &domain.Book{}
	err := r.db.QueryRowContext(ctx, query, isbn13).Scan(
		&book.ID,
		&book.ISBN13,
		&book.Title,
		&book.TitleNorm,
		&book.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ISBN: %w", err)
	}

	return book, nil
}

// Search matches the normalized query against title_norm with substring
// semantics, newest book first.
func (r *bookRepository) Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error) {
	qn := normalize.Title(query)

	sqlQuery := `
		SELECT id, isbn13, title
		FROM books
		WHERE title_norm ILIKE $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, "%"+qn+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	defer rows.Close()

	results := []domain.BookSummary{}
	for rows.Next() {
		var b domain.BookSummary
		if err := rows.Scan(&b.ID, &b.ISBN13, &b.Title); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookscout/internal/domain"
	"bookscout/internal/repository"
)

type stubCatalog struct {
	comparison *domain.BookComparison
	summaries  []domain.BookSummary
	grid       []domain.ComparedBook
	err        error

	searchQuery string
	searchLimit int
	gridLimit   int
}

func (s *stubCatalog) CompareByISBN(ctx context.Context, isbn13 string) (*domain.BookComparison, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.comparison, nil
}

func (s *stubCatalog) Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error) {
	s.searchQuery = query
	s.searchLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.summaries, nil
}

func (s *stubCatalog) ListCompared(ctx context.Context, limit int) ([]domain.ComparedBook, error) {
	s.gridLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.grid, nil
}

func newTestRouter(stub *stubCatalog) http.Handler {
	r := chi.NewRouter()
	handler := NewCatalogHandler(stub, zap.NewNop())
	handler.RegisterRoutes(r)
	return r
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestCompareByISBNReturnsComparison(t *testing.T) {
	stub := &stubCatalog{
		comparison: &domain.BookComparison{
			Book: domain.Book{ID: 1, ISBN13: "9789941233449", Title: strPtr("Title")},
			Offers: []domain.StoreOffer{
				{Store: "parnasi", URL: "https://parnasi.ge/product/x/", PriceGEL: floatPtr(22.5), InStock: boolPtr(true)},
				{Store: "biblusi", URL: "https://biblusi.ge/products/1", PriceGEL: floatPtr(25), InStock: boolPtr(true)},
			},
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/compare/by-isbn/9789941233449", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body domain.BookComparison
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Book.ISBN13 != "9789941233449" {
		t.Errorf("isbn13 = %s", body.Book.ISBN13)
	}
	if len(body.Offers) != 2 || body.Offers[0].Store != "parnasi" {
		t.Errorf("offers = %+v", body.Offers)
	}
}

func TestCompareByISBNUnknownBookIs404(t *testing.T) {
	stub := &stubCatalog{err: repository.ErrBookNotFound}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/compare/by-isbn/9780000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCompareByISBNStorageFaultIs500(t *testing.T) {
	stub := &stubCatalog{err: errors.New("connection reset")}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/compare/by-isbn/9789941233449", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSearchPassesQueryAndDefaultLimit(t *testing.T) {
	stub := &stubCatalog{
		summaries: []domain.BookSummary{{ID: 1, ISBN13: "9789941233449", Title: strPtr("Title")}},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/search?q=poteri", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if stub.searchQuery != "poteri" {
		t.Errorf("query = %q", stub.searchQuery)
	}
	if stub.searchLimit != 20 {
		t.Errorf("limit = %d, want default 20", stub.searchLimit)
	}

	var body struct {
		Items []domain.BookSummary `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Items) != 1 {
		t.Errorf("items = %+v", body.Items)
	}
}

func TestSearchMissingQueryIs400(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchRejectsBadLimit(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	for _, limit := range []string{"abc", "0", "101"} {
		req := httptest.NewRequest(http.MethodGet, "/search?q=x&limit="+limit, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestListComparedReturnsGrid(t *testing.T) {
	stub := &stubCatalog{
		grid: []domain.ComparedBook{
			{
				Title:  strPtr("Both Stores"),
				ISBN13: "9789941233449",
				Prices: map[string]*float64{"biblusi": floatPtr(25), "parnasi": floatPtr(22.5)},
			},
			{
				Title:  strPtr("One Store"),
				ISBN13: "9780306406157",
				Prices: map[string]*float64{"biblusi": floatPtr(30), "parnasi": nil},
			},
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/books?limit=50", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if stub.gridLimit != 50 {
		t.Errorf("limit = %d, want 50", stub.gridLimit)
	}

	var body []map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("rows = %d, want 2", len(body))
	}
	// absent store prices must serialize as explicit nulls
	var prices map[string]*float64
	if err := json.Unmarshal(body[1]["prices"], &prices); err != nil {
		t.Fatal(err)
	}
	if v, ok := prices["parnasi"]; !ok || v != nil {
		t.Errorf("parnasi price = %v (present=%v), want explicit null", v, ok)
	}
}

func TestListComparedRejectsBadLimit(t *testing.T) {
	router := newTestRouter(&stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/books?limit=-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

package service

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"bookscout/internal/domain"
	"bookscout/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec("TRUNCATE offers, store_products, books RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func offerCount(t *testing.T) int {
	t.Helper()
	var n int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM offers").Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func biblusiObservation() domain.Observation {
	return domain.Observation{
		Store:          "biblusi",
		StoreProductID: "123",
		URL:            "https://biblusi.ge/products/123",
		Title:          strPtr("ჰარი პოტერი"),
		ISBN:           strPtr("978-9941-23-344-9"),
		PriceGEL:       floatPtr(25),
		InStock:        boolPtr(true),
	}
}

func TestIngestCompactsUnchangedObservations(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := svc.Ingest(ctx, biblusiObservation())
		if err != nil {
			t.Fatalf("ingest %d failed: %v", i, err)
		}
		if want := i == 0; res.Appended != want {
			t.Errorf("ingest %d appended = %v, want %v", i, res.Appended, want)
		}
	}

	if n := offerCount(t); n != 1 {
		t.Errorf("offer rows = %d, want 1 after repeated identical observations", n)
	}
}

func TestIngestAppendsOnPriceChange(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, biblusiObservation()); err != nil {
		t.Fatal(err)
	}

	changed := biblusiObservation()
	changed.PriceGEL = floatPtr(22.5)
	res, err := svc.Ingest(ctx, changed)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Appended {
		t.Error("price change was not appended")
	}
	if n := offerCount(t); n != 2 {
		t.Errorf("offer rows = %d, want 2", n)
	}
}

func TestIngestTracksStockTransitions(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	// unknown -> true -> false, every transition is a new row
	steps := []*bool{nil, boolPtr(true), boolPtr(false)}
	for i, stock := range steps {
		obs := biblusiObservation()
		obs.InStock = stock
		res, err := svc.Ingest(ctx, obs)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Appended {
			t.Errorf("step %d: stock transition was not appended", i)
		}
	}

	if n := offerCount(t); n != 3 {
		t.Errorf("offer rows = %d, want 3", n)
	}
}

func TestIngestWithInvalidISBNLeavesListingUnlinked(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	obs := biblusiObservation()
	obs.ISBN = strPtr("9789941233440") // bad check digit
	res, err := svc.Ingest(ctx, obs)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Appended {
		t.Error("first observation should always append")
	}

	var books int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM books").Scan(&books); err != nil {
		t.Fatal(err)
	}
	if books != 0 {
		t.Errorf("books = %d, want 0 for unusable ISBN", books)
	}

	var bookID *int64
	err = testDB.QueryRow("SELECT book_id FROM store_products WHERE store = 'biblusi' AND store_product_id = '123'").Scan(&bookID)
	if err != nil {
		t.Fatal(err)
	}
	if bookID != nil {
		t.Errorf("book_id = %v, want NULL", bookID)
	}
}

func TestIngestLinksLaterOnceISBNAppears(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	first := biblusiObservation()
	first.ISBN = nil
	if _, err := svc.Ingest(ctx, first); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Ingest(ctx, biblusiObservation()); err != nil {
		t.Fatal(err)
	}

	var bookID *int64
	err := testDB.QueryRow("SELECT book_id FROM store_products WHERE store = 'biblusi' AND store_product_id = '123'").Scan(&bookID)
	if err != nil {
		t.Fatal(err)
	}
	if bookID == nil {
		t.Error("listing stayed unlinked after an observation with a valid ISBN")
	}
}

func TestIngestConcurrentSameISBNConverges(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			obs := biblusiObservation()
			if n%2 == 1 {
				obs.Store = "parnasi"
				obs.StoreProductID = "hari-poteri"
				obs.URL = "https://parnasi.ge/product/hari-poteri/"
				obs.PriceGEL = floatPtr(22.5)
			}
			if _, err := svc.Ingest(ctx, obs); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ingest failed: %v", err)
	}

	var books int
	if err := testDB.QueryRow("SELECT COUNT(*) FROM books").Scan(&books); err != nil {
		t.Fatal(err)
	}
	if books != 1 {
		t.Errorf("books = %d, want a single identity for one ISBN", books)
	}
}

func TestIngestEndToEndComparison(t *testing.T) {
	resetTables(t)
	svc := NewIngestService(testDB, zap.NewNop())
	comparison := repository.NewComparisonRepository(testDB)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, biblusiObservation()); err != nil {
		t.Fatal(err)
	}

	parnasi := domain.Observation{
		Store:          "parnasi",
		StoreProductID: "hari-poteri",
		URL:            "https://parnasi.ge/product/hari-poteri/",
		Title:          strPtr("ჰარი პოტერი"),
		ISBN:           strPtr("9789941233449"),
		PriceGEL:       floatPtr(22.5),
		InStock:        boolPtr(true),
	}
	if _, err := svc.Ingest(ctx, parnasi); err != nil {
		t.Fatal(err)
	}

	result, err := comparison.CompareByISBN(ctx, "9789941233449")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(result.Offers))
	}
	// cheapest in-stock offer leads
	if result.Offers[0].Store != "parnasi" || result.Offers[0].PriceGEL == nil || *result.Offers[0].PriceGEL != 22.5 {
		t.Errorf("first offer = %+v, want parnasi at 22.5", result.Offers[0])
	}
	if result.Offers[1].Store != "biblusi" {
		t.Errorf("second offer store = %s, want biblusi", result.Offers[1].Store)
	}
}

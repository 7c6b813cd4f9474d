package scrape

import (
	"context"
	"time"

	"bookscout/internal/domain"
	"bookscout/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Ingester is the write-side surface the runner feeds. Satisfied by
// service.IngestService.
type Ingester interface {
	Ingest(ctx context.Context, obs domain.Observation) (service.IngestResult, error)
}

// Runner drives one scrape cycle across all configured store adapters.
// Product-page fetches are paced by a shared rate limiter; a failure on one
// product is logged and skipped so it never aborts the rest of the run.
type Runner struct {
	adapters  []Adapter
	ingester  Ingester
	limiter   *rate.Limiter
	logger    *zap.Logger
	metrics   *Metrics
	startPage int
	pages     int
}

// NewRunner creates a new Runner.
func NewRunner(adapters []Adapter, ingester Ingester, requestsPerSecond, startPage, pages int, logger *zap.Logger, metrics *Metrics) *Runner {
	return &Runner{
		adapters:  adapters,
		ingester:  ingester,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:    logger,
		metrics:   metrics,
		startPage: startPage,
		pages:     pages,
	}
}

// Run executes one full cycle. It returns early only when the context is
// cancelled; per-store and per-product failures are contained.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID))

	for _, adapter := range r.adapters {
		store := adapter.Store()

		refs, err := adapter.ListProducts(ctx, r.startPage, r.pages)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.metrics.IncErrors(store)
			logger.Error("Listing crawl failed", zap.String("store", store), zap.Error(err))
			continue
		}
		r.metrics.AddPages(r.pages)

		logger.Info("Listing crawl complete",
			zap.String("store", store),
			zap.Int("products", len(refs)),
		)

		for i, ref := range refs {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}

			start := time.Now()
			obs, err := adapter.FetchOffer(ctx, ref)
			r.metrics.ObserveFetch(time.Since(start))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.metrics.IncErrors(store)
				logger.Warn("Product fetch failed",
					zap.String("store", store),
					zap.String("url", ref.URL),
					zap.Error(err),
				)
				continue
			}

			result, err := r.ingester.Ingest(ctx, obs)
			if err != nil {
				r.metrics.IncErrors(store)
				logger.Warn("Ingest failed",
					zap.String("store", store),
					zap.String("url", ref.URL),
					zap.Error(err),
				)
				continue
			}

			r.metrics.IncOffers(store)
			if result.Appended {
				r.metrics.IncAppended(store)
			}

			logger.Debug("Observation ingested",
				zap.String("store", store),
				zap.Int("index", i+1),
				zap.Int("total", len(refs)),
				zap.Any("price_gel", obs.PriceGEL),
				zap.Any("in_stock", obs.InStock),
				zap.Bool("appended", result.Appended),
			)
		}
	}

	return ctx.Err()
}

package scrape

import (
	"context"
	"net/http"
	"time"

	"bookscout/internal/domain"

	"github.com/gocolly/colly/v2"
)

// Adapter is the two-method contract every store scraper implements. The
// reconciliation core never sees an adapter, only the observations it
// produces.
type Adapter interface {
	Store() string
	ListProducts(ctx context.Context, startPage, pages int) ([]domain.ProductRef, error)
	FetchOffer(ctx context.Context, ref domain.ProductRef) (domain.Observation, error)
}

// Options are shared adapter settings. Transport is overridable so tests
// can serve canned pages.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// newCollector builds a synchronous colly collector pinned to one store's
// domain. A fresh collector per call keeps handler registration local and
// gives colly's visited-URL dedup a per-call scope.
func (o Options) newCollector(allowedDomain string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(allowedDomain),
		colly.UserAgent(o.UserAgent),
	)
	if o.Timeout > 0 {
		c.SetRequestTimeout(o.Timeout)
	}
	if o.Transport != nil {
		c.WithTransport(o.Transport)
	}
	return c
}

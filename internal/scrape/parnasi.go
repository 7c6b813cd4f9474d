package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"bookscout/internal/domain"

	"github.com/gocolly/colly/v2"
)

const (
	parnasiStore  = "parnasi"
	parnasiDomain = "parnasi.ge"

	parnasiInStock    = "მარაგში"
	parnasiOutOfStock = "არ არის მარაგში"
)

var parnasiProductURL = regexp.MustCompile(`^https?://parnasi\.ge/product/[^/]+/?$`)

// Parnasi scrapes parnasi.ge, a WooCommerce shop with slug-addressed
// product pages.
type Parnasi struct {
	opts Options
}

// NewParnasi creates a parnasi.ge adapter.
func NewParnasi(opts Options) *Parnasi {
	return &Parnasi{opts: opts}
}

func (p *Parnasi) Store() string {
	return parnasiStore
}

func (p *Parnasi) listingURL(page int) string {
	if page == 1 {
		return "https://parnasi.ge/shop/"
	}
	return fmt.Sprintf("https://parnasi.ge/shop/page/%d/", page)
}

// ListProducts walks the shop pages and collects product refs. The slug is
// percent-decoded so Georgian slugs read as text in the database.
func (p *Parnasi) ListProducts(ctx context.Context, startPage, pages int) ([]domain.ProductRef, error) {
	refs := []domain.ProductRef{}
	seen := map[string]bool{}

	for page := startPage; page < startPage+pages; page++ {
		if err := ctx.Err(); err != nil {
			return refs, err
		}

		c := p.opts.newCollector(parnasiDomain)
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			full := e.Request.AbsoluteURL(strings.TrimSpace(e.Attr("href")))
			if !parnasiProductURL.MatchString(full) {
				return
			}
			if seen[full] {
				return
			}
			seen[full] = true

			slug := strings.TrimSuffix(full, "/")
			slug = slug[strings.LastIndex(slug, "/product/")+len("/product/"):]
			if decoded, err := url.PathUnescape(slug); err == nil {
				slug = decoded
			}

			refs = append(refs, domain.ProductRef{
				Store:          parnasiStore,
				StoreProductID: slug,
				URL:            full,
			})
		})

		if err := c.Visit(p.listingURL(page)); err != nil {
			return refs, fmt.Errorf("parnasi listing page %d: %w", page, err)
		}
	}

	return refs, nil
}

// FetchOffer fetches one product page. The price is taken from the
// WooCommerce summary price block when present; otherwise the highest lari
// amount on the page is used, which skips the smaller cart and related-item
// prices.
func (p *Parnasi) FetchOffer(ctx context.Context, ref domain.ProductRef) (domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Observation{}, err
	}

	obs := domain.Observation{
		Store:          parnasiStore,
		StoreProductID: ref.StoreProductID,
		URL:            ref.URL,
	}

	c := p.opts.newCollector(parnasiDomain)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if title := strings.TrimSpace(e.ChildText("h1")); title != "" {
			obs.Title = &title
		}

		for _, sel := range []string{
			"div.product div.summary p.price",
			"div.product div.summary .price",
			"p.price",
			".price",
		} {
			if block := e.DOM.Find(sel).First(); block.Length() > 0 {
				obs.PriceGEL = ExtractPriceGEL(block.Text())
				break
			}
		}

		text := e.Text
		if obs.PriceGEL == nil {
			obs.PriceGEL = MaxPriceGEL(text)
		}
		obs.ISBN = ExtractISBN(text)
		obs.InStock = ExtractAvailability(text, parnasiInStock, parnasiOutOfStock)
	})

	if err := c.Visit(ref.URL); err != nil {
		return domain.Observation{}, fmt.Errorf("parnasi product %s: %w", ref.URL, err)
	}

	return obs, nil
}

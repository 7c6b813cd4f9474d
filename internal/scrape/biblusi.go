package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bookscout/internal/domain"

	"github.com/gocolly/colly/v2"
)

const (
	biblusiStore  = "biblusi"
	biblusiDomain = "biblusi.ge"

	biblusiInStock    = "მარაგშია"
	biblusiOutOfStock = "არ არის მარაგში"
)

var biblusiProductHref = regexp.MustCompile(`^/products/\d+$`)

// Biblusi scrapes biblusi.ge, whose catalog is paginated by category id and
// links products as /products/<numeric id>.
type Biblusi struct {
	opts       Options
	categoryID int
}

// NewBiblusi creates a biblusi.ge adapter for one catalog category.
func NewBiblusi(opts Options, categoryID int) *Biblusi {
	return &Biblusi{opts: opts, categoryID: categoryID}
}

func (b *Biblusi) Store() string {
	return biblusiStore
}

// ListProducts walks the category listing pages and collects product refs,
// deduplicated by URL.
func (b *Biblusi) ListProducts(ctx context.Context, startPage, pages int) ([]domain.ProductRef, error) {
	refs := []domain.ProductRef{}
	seen := map[string]bool{}

	for page := startPage; page < startPage+pages; page++ {
		if err := ctx.Err(); err != nil {
			return refs, err
		}

		c := b.opts.newCollector(biblusiDomain)
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			href := strings.TrimSpace(e.Attr("href"))
			if !biblusiProductHref.MatchString(href) {
				return
			}
			full := e.Request.AbsoluteURL(href)
			if seen[full] {
				return
			}
			seen[full] = true

			parts := strings.Split(href, "/")
			refs = append(refs, domain.ProductRef{
				Store:          biblusiStore,
				StoreProductID: parts[len(parts)-1],
				URL:            full,
			})
		})

		listingURL := fmt.Sprintf("https://biblusi.ge/products?category=%d&page=%d", b.categoryID, page)
		if err := c.Visit(listingURL); err != nil {
			return refs, fmt.Errorf("biblusi listing page %d: %w", page, err)
		}
	}

	return refs, nil
}

// FetchOffer fetches one product page and extracts the observation fields
// from its text.
func (b *Biblusi) FetchOffer(ctx context.Context, ref domain.ProductRef) (domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Observation{}, err
	}

	obs := domain.Observation{
		Store:          biblusiStore,
		StoreProductID: ref.StoreProductID,
		URL:            ref.URL,
	}

	c := b.opts.newCollector(biblusiDomain)
	c.OnHTML("html", func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText("h1"))
		if title == "" {
			title = strings.TrimSpace(e.ChildText("title"))
		}
		if title != "" {
			obs.Title = &title
		}

		text := e.Text
		obs.PriceGEL = ExtractPriceGEL(text)
		obs.ISBN = ExtractISBN(text)
		obs.InStock = ExtractAvailability(text, biblusiInStock, biblusiOutOfStock)
	})

	if err := c.Visit(ref.URL); err != nil {
		return domain.Observation{}, fmt.Errorf("biblusi product %s: %w", ref.URL, err)
	}

	return obs, nil
}

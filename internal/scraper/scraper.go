// Package scraper walks the configured menu categories and turns every
// product card into a models.Product.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/tonysxn/brobar.delivery/config"
	"github.com/tonysxn/brobar.delivery/internal/fetch"
	"github.com/tonysxn/brobar.delivery/internal/identity"
	"github.com/tonysxn/brobar.delivery/internal/models"
	"github.com/tonysxn/brobar.delivery/internal/progress"
)

// ErrDuplicateSlug marks a card whose product slug was already emitted in
// this run; the products table has a unique slug constraint.
var ErrDuplicateSlug = errors.New("duplicate product slug")

// ErrUnsafeSlug marks a slug COPY would read as an escape sequence.
var ErrUnsafeSlug = errors.New("backslash in product slug")

// ImageStore downloads a product picture and returns the stored filename.
type ImageStore interface {
	FetchAndStore(ctx context.Context, url, baseName string) (string, error)
}

// Report summarizes what a run recovered from.
type Report struct {
	Categories       int
	CategoriesFailed []string
	CardsParsed      int
	CardsSkipped     int
	ImagesStored     int
	ImagesMissing    int
}

// Scraper fetches category listing pages and extracts product cards.
type Scraper struct {
	fetcher    fetch.Fetcher
	images     ImageStore
	base       *url.URL
	categories []config.Category
	workers    int
	logger     *slog.Logger
}

func New(cfg *config.Config, fetcher fetch.Fetcher, images ImageStore, logger *slog.Logger) (*Scraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Scraper{
		fetcher:    fetcher,
		images:     images,
		base:       base,
		categories: cfg.Categories,
		workers:    workers,
		logger:     logger.With("component", "scraper"),
	}, nil
}

// run holds the identities already handed out in one run.
type run struct {
	slugs       map[string]bool
	externalIDs map[string]bool
	report      *Report
}

func newRun() *run {
	return &run{
		slugs:       make(map[string]bool),
		externalIDs: make(map[string]bool),
		report:      &Report{},
	}
}

// Run scrapes every configured category in order. A category whose page
// cannot be fetched still gets its row; it just contributes no products.
// The only error returned is context cancellation.
func (s *Scraper) Run(ctx context.Context) (*models.Catalog, *Report, error) {
	r := newRun()
	catalog := &models.Catalog{}

	for i, cfgCat := range s.categories {
		if err := ctx.Err(); err != nil {
			return nil, r.report, err
		}

		cat := models.Category{
			ID:   uuid.New(),
			Name: escapeText(cfgCat.Name),
			Slug: cfgCat.Slug,
			Icon: cfgCat.Icon,
			Sort: i * 10,
		}
		catalog.Categories = append(catalog.Categories, cat)
		r.report.Categories++

		progress.Report(ctx, "Scraping %s (%d/%d)...", cfgCat.Name, i+1, len(s.categories))

		products, err := s.scrapeCategory(ctx, cat, r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.report, ctx.Err()
			}
			r.report.CategoriesFailed = append(r.report.CategoriesFailed, cat.Slug)
			s.logger.WarnContext(ctx, "category skipped", "category", cat.Slug, "error", err)
			continue
		}
		catalog.Products = append(catalog.Products, products...)
		s.logger.InfoContext(ctx, "category scraped", "category", cat.Slug, "products", len(products))
	}

	return catalog, r.report, nil
}

// ScrapeCategory scrapes a single category outside of a full run. Slug
// uniqueness is only enforced within the returned slice.
func (s *Scraper) ScrapeCategory(ctx context.Context, cat models.Category) ([]models.Product, *Report, error) {
	r := newRun()
	products, err := s.scrapeCategory(ctx, cat, r)
	return products, r.report, err
}

// CategoryURL is the listing page of a category slug.
func (s *Scraper) CategoryURL(slug string) string {
	return s.base.JoinPath("category", slug).String()
}

func (s *Scraper) scrapeCategory(ctx context.Context, cat models.Category, r *run) ([]models.Product, error) {
	pageURL := s.CategoryURL(cat.Slug)

	resp, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &fetch.StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := parseDocument(resp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	cards := s.extractCards(ctx, doc, cat, r)
	return s.buildProducts(ctx, cat, cards, r)
}

func parseDocument(resp *fetch.Response) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	return goquery.NewDocumentFromReader(reader)
}

// extractCards reads every card of the page in document order. Identity is
// resolved here, sequentially, so duplicate detection does not depend on
// download timing.
func (s *Scraper) extractCards(ctx context.Context, doc *goquery.Document, cat models.Category, r *run) []card {
	var cards []card
	doc.Find(cardSelector).Each(func(i int, sel *goquery.Selection) {
		c, err := s.extractCard(sel, i)
		if err == nil && r.slugs[c.slug] {
			err = fmt.Errorf("%w: %s", ErrDuplicateSlug, c.slug)
		}
		if err != nil {
			r.report.CardsSkipped++
			s.logger.WarnContext(ctx, "card skipped", "category", cat.Slug, "card", i, "error", err)
			return
		}
		r.slugs[c.slug] = true
		c.externalID = r.newExternalID()
		cards = append(cards, c)
	})
	return cards
}

func (r *run) newExternalID() string {
	for {
		id := identity.NewExternalID()
		if !r.externalIDs[id] {
			r.externalIDs[id] = true
			return id
		}
	}
}

// buildProducts downloads images with at most s.workers in flight and
// returns products in card order.
func (s *Scraper) buildProducts(ctx context.Context, cat models.Category, cards []card, r *run) ([]models.Product, error) {
	images := make([]string, len(cards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range cards {
		if c.imageURL == "" {
			continue
		}
		g.Go(func() error {
			name, err := s.images.FetchAndStore(gctx, c.imageURL, c.slug)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.WarnContext(gctx, "image download failed",
					"category", cat.Slug,
					"card", c.index,
					"url", c.imageURL,
					"error", err,
				)
				return nil
			}
			images[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(cards))
	for i, c := range cards {
		if images[i] == "" {
			r.report.ImagesMissing++
		} else {
			r.report.ImagesStored++
		}
		r.report.CardsParsed++
		products = append(products, c.product(cat.ID, images[i]))
	}
	return products, nil
}

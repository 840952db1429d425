package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/tonysxn/brobar.delivery/internal/identity"
	"github.com/tonysxn/brobar.delivery/internal/models"
	"github.com/tonysxn/brobar.delivery/internal/normalize"
)

const (
	cardSelector        = ".card-product"
	nameSelector        = ".card-product-name p"
	imageSelector       = "div.card-product-img img"
	priceSelector       = ".card-product-price-bg"
	descriptionSelector = ".card-product-info-hover-text p"

	fragmentSeparator = "|"
	unknownName       = "Unknown"
)

var (
	currencyMarkers = []string{"₴"}
	unitMarkers     = []string{"кг", "л"}
)

// COPY text format: backslash is the escape character, tab separates
// fields, newline separates rows.
var copyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r", "",
	"\n", `\n`,
	"\t", " ",
)

func escapeText(s string) string {
	return copyEscaper.Replace(s)
}

// card is what one product card yields before its image is downloaded.
type card struct {
	index       int
	name        string
	slug        string
	externalID  string
	imageURL    string
	price       decimal.Decimal
	weight      decimal.Decimal
	description string
}

func (s *Scraper) extractCard(sel *goquery.Selection, index int) (card, error) {
	c := card{
		index:  index,
		name:   unknownName,
		price:  decimal.Zero,
		weight: decimal.Zero,
	}

	if name := strippedText(sel.Find(nameSelector).First()); name != "" {
		c.name = escapeText(name)
	}

	href, _ := sel.ParentsFiltered("a").First().Attr("href")
	c.slug = identity.DeriveSlug(href)
	if strings.Contains(c.slug, `\`) {
		return card{}, fmt.Errorf("%w: %q", ErrUnsafeSlug, c.slug)
	}

	if src, ok := sel.Find(imageSelector).First().Attr("src"); ok && src != "" {
		abs, err := s.resolve(src)
		if err != nil {
			return card{}, fmt.Errorf("image src %q: %w", src, err)
		}
		c.imageURL = abs
	}

	if block := sel.Find(priceSelector).First(); block.Length() > 0 {
		for _, frag := range strings.Split(joinedText(block, fragmentSeparator), fragmentSeparator) {
			frag = strings.TrimSpace(frag)
			if containsAny(frag, currencyMarkers) {
				c.price = normalize.ParsePrice(frag)
			}
			if containsAny(frag, unitMarkers) {
				c.weight = normalize.ParseWeight(frag)
			}
		}
	}

	c.description = escapeText(strippedText(sel.Find(descriptionSelector).First()))
	return c, nil
}

func (c card) product(categoryID uuid.UUID, image string) models.Product {
	return models.Product{
		ID:          uuid.New(),
		ExternalID:  c.externalID,
		Name:        c.name,
		Slug:        c.slug,
		Description: c.description,
		Price:       c.price,
		Weight:      c.weight,
		CategoryID:  categoryID,
		Image:       image,
	}
}

// resolve makes a relative image source absolute against the site root.
func (s *Scraper) resolve(src string) (string, error) {
	if strings.HasPrefix(src, "http") {
		return src, nil
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	return s.base.ResolveReference(ref).String(), nil
}

// strippedText concatenates the trimmed text nodes under sel.
func strippedText(sel *goquery.Selection) string {
	return joinedText(sel, "")
}

// joinedText trims every text node under sel, drops empty ones and joins the
// rest with sep.
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

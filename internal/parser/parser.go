package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Houeta/deal-watch/internal/lib/normalize"
	"github.com/Houeta/deal-watch/internal/models"
	"github.com/PuerkitoBio/goquery"
)

// ErrNoListingContainer means the document has no results container at all,
// which usually signals a markup change upstream rather than an empty search.
var ErrNoListingContainer = errors.New("no listing container found in document")

// Item-level errors. An item failing with one of these is dropped.
var (
	ErrMissingAnchor = errors.New("listing anchor not found")
	ErrMissingTitle  = errors.New("listing title not found")
	ErrMissingPrice  = errors.New("listing price not found")
	ErrMissingSeller = errors.New("seller anchor not found")
	ErrMissingAge    = errors.New("listing age caption not found")
)

// Selectors of the search results markup.
const (
	containerSelector  = "main"
	cardCandidates     = "[data-testid]"
	listingAnchor      = `a[href*="/p/"]`
	sellerAnchor       = `a[href*="/u/"]`
	sellerNameSelector = `[data-testid="listing-card-text-seller-name"]`
	currentPriceTag    = "p"
	strickenPriceTag   = "s"
	bumpedIconTag      = "svg"

	titleChildIdx      = 1
	priceBlockChildIdx = 2
)

var cardTestID = regexp.MustCompile(`^listing-card-\d{10}$`)

// HTMLParser turns a search results document into listings.
type HTMLParser interface {
	Parse(ctx context.Context, inp io.Reader) ([]models.Listing, error)
}

type Parser struct {
	log *slog.Logger
}

func NewParser(log *slog.Logger) *Parser {
	return &Parser{log: log}
}

// Parse extracts every well-formed listing card from the document, most recent first.
func (p *Parser) Parse(ctx context.Context, inp io.Reader) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(inp)
	if err != nil {
		return nil, fmt.Errorf("data cannot be parsed as HTML: %w", err)
	}

	container := doc.Find(containerSelector).First()
	if container.Length() == 0 {
		return nil, ErrNoListingContainer
	}

	cards := container.Find(cardCandidates).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return cardTestID.MatchString(s.AttrOr("data-testid", ""))
	})

	listings := make([]models.Listing, 0, cards.Length())
	cards.Each(func(idx int, card *goquery.Selection) {
		listing, itemErr := parseCard(card)
		if itemErr != nil {
			p.log.DebugContext(ctx, "skipping unparseable listing", "index", idx, "error", itemErr)
			return
		}
		p.log.DebugContext(
			ctx,
			"Parsed listing",
			"url", listing.ListingURL,
			"price", listing.Price,
			"age", listing.Age,
		)
		listings = append(listings, listing)
	})

	models.SortByAge(listings)

	return listings, nil
}

// parseCard assembles one listing. Any missing mandatory field rejects the whole card.
func parseCard(card *goquery.Selection) (models.Listing, error) {
	anchor, href, err := detailAnchor(card)
	if err != nil {
		return models.Listing{}, err
	}

	title, err := extractTitle(anchor)
	if err != nil {
		return models.Listing{}, err
	}

	price, stricken, err := extractPrices(anchor)
	if err != nil {
		return models.Listing{}, err
	}

	seller, err := extractSellerURL(card)
	if err != nil {
		return models.Listing{}, err
	}

	age, bumped, err := extractCaption(card)
	if err != nil {
		return models.Listing{}, err
	}

	return models.Listing{
		ListingURL:    href,
		Title:         title,
		Price:         price,
		StrickenPrice: stricken,
		SellerURL:     seller,
		Age:           age,
		AgeHours:      normalize.AgeToHours(age),
		IsBumped:      bumped,
	}, nil
}

// detailAnchor finds the link to the item page (a[href*="/p/"]).
func detailAnchor(card *goquery.Selection) (*goquery.Selection, string, error) {
	anchor := card.Find(listingAnchor).First()
	href, ok := anchor.Attr("href")
	if anchor.Length() == 0 || !ok || strings.TrimSpace(href) == "" {
		return nil, "", ErrMissingAnchor
	}

	return anchor, strings.TrimSpace(href), nil
}

// extractTitle reads the title, the second child of the detail anchor.
func extractTitle(anchor *goquery.Selection) (string, error) {
	title := strings.TrimSpace(anchor.Children().Eq(titleChildIdx).Text())
	if title == "" {
		return "", ErrMissingTitle
	}

	return title, nil
}

// extractPrices reads the price block, the third child of the detail anchor.
// The current price is its first <p>, the original price an optional <s>.
func extractPrices(anchor *goquery.Selection) (float64, *float64, error) {
	block := anchor.Children().Eq(priceBlockChildIdx)
	current := block.Find(currentPriceTag).First()
	if current.Length() == 0 {
		return 0, nil, ErrMissingPrice
	}

	price, err := normalize.PriceToFloat(current.Text())
	if err != nil {
		return 0, nil, fmt.Errorf("current price: %w", err)
	}

	var stricken *float64
	if s := block.Find(strickenPriceTag).First(); s.Length() > 0 {
		if v, sErr := normalize.PriceToFloat(s.Text()); sErr == nil {
			stricken = &v
		}
	}

	return price, stricken, nil
}

// extractSellerURL reads the seller profile link (a[href*="/u/"]).
func extractSellerURL(card *goquery.Selection) (string, error) {
	href, ok := card.Find(sellerAnchor).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", ErrMissingSeller
	}

	return strings.TrimSpace(href), nil
}

// extractCaption reads the element right after the seller name: the age text
// and, when present, the bump icon.
func extractCaption(card *goquery.Selection) (string, bool, error) {
	caption := card.Find(sellerNameSelector).First().Next()
	if caption.Length() == 0 {
		return "", false, ErrMissingAge
	}

	age := normalize.TrimAgo(caption.Text())
	if age == "" {
		return "", false, ErrMissingAge
	}

	return age, caption.Find(bumpedIconTag).Length() > 0, nil
}

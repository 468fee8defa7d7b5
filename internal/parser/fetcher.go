package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent     = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/118.0"
	searchQuery   = "addRecent=false&canChangeKeyword=true&includeSuggestions=false&t-search_query_source=direct_search&tab=marketplace"
	nextPageLinks = `li.pagination-next a, a[rel="next"]`
)

// PageFetcher downloads one search results page for a term.
type PageFetcher interface {
	// FetchSearchPage returns the raw document and the token of the following page ("" on the last page).
	FetchSearchPage(ctx context.Context, term, pageToken string) ([]byte, string, error)
}

// Fetcher is a plain HTTP PageFetcher against the marketplace origin.
type Fetcher struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
}

func NewFetcher(log *slog.Logger, baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{log: log, baseURL: strings.TrimRight(baseURL, "/"), client: &http.Client{Timeout: timeout}}
}

// FetchSearchPage implements PageFetcher.
func (f *Fetcher) FetchSearchPage(ctx context.Context, term, pageToken string) ([]byte, string, error) {
	reqURL, err := f.pageURL(term, pageToken)
	if err != nil {
		return nil, "", err
	}

	resp, err := f.getHTMLResponse(ctx, reqURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get html response: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nextPageToken(body), nil
}

// pageURL builds the first search page URL, or resolves a next page token against the origin.
func (f *Fetcher) pageURL(term, pageToken string) (string, error) {
	base, err := url.Parse(f.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("failed to parse base URL %s: invalid origin", f.baseURL)
	}

	ref := "/search/" + url.PathEscape(term) + "?" + searchQuery
	if pageToken != "" {
		ref = pageToken
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("failed to parse page reference %s: %w", ref, err)
	}

	return base.ResolveReference(refURL).String(), nil
}

func (f *Fetcher) getHTMLResponse(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request %s: %w", reqURL, err)
	}

	req.Header.Add("User-Agent", userAgent)

	f.log.DebugContext(ctx, "Send request", "method", req.Method, "URL", req.URL)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", reqURL, err)
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("status code error: [%d] %s", res.StatusCode, res.Status)
	}

	f.log.DebugContext(ctx, "Successfully received http response", "status code", res.StatusCode)

	return res, nil
}

// nextPageToken returns the href of the pagination "next" link, if any.
func nextPageToken(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(doc.Find(nextPageLinks).First().AttrOr("href", ""))
}

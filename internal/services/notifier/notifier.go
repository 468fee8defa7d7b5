// Package notifier decides which stored listings have to be pushed to which owners.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Houeta/deal-watch/internal/lib/normalize"
	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
)

// Eligible reports whether a listing satisfies a search: it must be in the recency tier,
// have a finite price inside [min, max] and no excluded word in its title.
func Eligible(listing models.Listing, search models.MonitoredSearch) bool {
	if !normalize.IsRecent(listing.Age) {
		return false
	}

	return inRange(listing.Price, search.MinPrice, search.MaxPrice) && !excluded(listing.Title, search.Exclude)
}

func inRange(price float64, minPrice, maxPrice *float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}

	low, high := 0.0, math.Inf(1)
	if minPrice != nil {
		low = *minPrice
	}
	if maxPrice != nil {
		high = *maxPrice
	}
	if math.IsNaN(low) || math.IsNaN(high) || low < 0 || high < 0 || low > high {
		return false
	}

	return low <= price && price <= high
}

func excluded(title string, words []string) bool {
	title = strings.ToLower(title)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(title, w) {
			return true
		}
	}

	return false
}

// Filter selects push obligations from the registry and the stored snapshots.
type Filter struct {
	log      *slog.Logger
	registry repository.Registry
	store    repository.SnapshotStore
	ledger   repository.Ledger
}

// NewFilter creates a Filter. A nil ledger disables the already-notified check.
func NewFilter(
	log *slog.Logger,
	registry repository.Registry,
	store repository.SnapshotStore,
	ledger repository.Ledger,
) *Filter {
	return &Filter{log: log, registry: registry, store: store, ledger: ledger}
}

// Select returns one obligation per (owner, term, listing) that is eligible and not yet
// notified. A term whose snapshot cannot be loaded is skipped and its error joined into
// the returned error; the obligations of the other terms are still returned.
func (f *Filter) Select(ctx context.Context) ([]models.Obligation, error) {
	const opn = "notifier.Select"
	log := f.log.With("op", opn)

	searches, err := f.registry.ListSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list searches: %w", opn, err)
	}

	snapshots := make(map[string][]models.Listing)
	failed := make(map[string]struct{})
	var errs []error
	obligations := []models.Obligation{}

	for _, search := range searches {
		if _, ok := failed[search.SearchTerm]; ok {
			continue
		}

		listings, ok := snapshots[search.SearchTerm]
		if !ok {
			snap, loadErr := f.store.LoadSnapshot(ctx, search.SearchTerm)
			if loadErr != nil {
				log.ErrorContext(ctx, "Failed to load snapshot", "term", search.SearchTerm, "error", loadErr)
				failed[search.SearchTerm] = struct{}{}
				errs = append(errs, fmt.Errorf("%s: term %q: %w", opn, search.SearchTerm, loadErr))
				continue
			}
			listings = snap.Listings
			snapshots[search.SearchTerm] = listings
		}

		selected, selErr := f.selectForSearch(ctx, search, listings)
		if selErr != nil {
			errs = append(errs, fmt.Errorf("%s: term %q: %w", opn, search.SearchTerm, selErr))
		}
		obligations = append(obligations, selected...)
	}

	log.DebugContext(ctx, "Selection complete", "searches", len(searches), "obligations", len(obligations))

	return obligations, errors.Join(errs...)
}

func (f *Filter) selectForSearch(
	ctx context.Context,
	search models.MonitoredSearch,
	listings []models.Listing,
) ([]models.Obligation, error) {
	var out []models.Obligation
	seen := make(map[string]struct{}, len(listings))

	for _, l := range listings {
		if _, dup := seen[l.ListingURL]; dup {
			continue
		}
		seen[l.ListingURL] = struct{}{}

		if !Eligible(l, search) {
			continue
		}

		if f.ledger != nil {
			notified, err := f.ledger.WasNotified(ctx, search.OwnerID, search.SearchTerm, l.ListingURL)
			if err != nil {
				return out, fmt.Errorf("failed to check ledger: %w", err)
			}
			if notified {
				continue
			}
		}

		out = append(out, models.Obligation{OwnerID: search.OwnerID, SearchTerm: search.SearchTerm, Listing: l})
	}

	return out, nil
}

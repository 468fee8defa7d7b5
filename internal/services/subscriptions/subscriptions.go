// Package subscriptions applies owner commands to the monitored-search registry.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/Houeta/deal-watch/internal/lib/keylock"
	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
)

var (
	ErrEmptyOwner    = errors.New("owner id is empty")
	ErrNegativePrice = errors.New("price bound must be a non-negative number")
	ErrInvertedRange = errors.New("min price is greater than max price")
)

// Service mutates the registry under the same per-term locks the scrape cycle uses.
type Service struct {
	log      *slog.Logger
	registry repository.Registry
	store    repository.SnapshotStore
	ledger   repository.Ledger
	locks    *keylock.Locker
}

// NewService creates a Service.
func NewService(
	log *slog.Logger,
	registry repository.Registry,
	store repository.SnapshotStore,
	ledger repository.Ledger,
	locks *keylock.Locker,
) *Service {
	return &Service{log: log, registry: registry, store: store, ledger: ledger, locks: locks}
}

// NormalizeTerm trims, collapses inner whitespace and lower-cases a search term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// Validate checks the price bounds of a search.
func Validate(search models.MonitoredSearch) error {
	for _, bound := range []*float64{search.MinPrice, search.MaxPrice} {
		if bound != nil && (*bound < 0 || math.IsNaN(*bound) || math.IsInf(*bound, -1)) {
			return ErrNegativePrice
		}
	}
	if search.MinPrice != nil && search.MaxPrice != nil && *search.MinPrice > *search.MaxPrice {
		return ErrInvertedRange
	}

	return nil
}

// Add stores a search, replacing the constraints of an existing one with the same term.
// It returns the search as stored.
func (s *Service) Add(ctx context.Context, search models.MonitoredSearch) (models.MonitoredSearch, error) {
	const opn = "subscriptions.Add"

	search.SearchTerm = NormalizeTerm(search.SearchTerm)
	if search.SearchTerm == "" {
		return models.MonitoredSearch{}, fmt.Errorf("%s: %w", opn, repository.ErrEmptyTerm)
	}
	if search.OwnerID == "" {
		return models.MonitoredSearch{}, fmt.Errorf("%s: %w", opn, ErrEmptyOwner)
	}
	if err := Validate(search); err != nil {
		return models.MonitoredSearch{}, fmt.Errorf("%s: %w", opn, err)
	}
	search.Exclude = cleanExclude(search.Exclude)

	unlock := s.locks.Lock(search.SearchTerm)
	defer unlock()

	if err := s.registry.AddSearch(ctx, search); err != nil {
		return models.MonitoredSearch{}, fmt.Errorf("%s: %w", opn, err)
	}
	s.log.InfoContext(ctx, "Search added", "op", opn, "owner", search.OwnerID, "term", search.SearchTerm)

	return search, nil
}

// Remove deletes an owner's search together with its ledger entries. The snapshot of the
// term is dropped once no owner monitors it any more.
func (s *Service) Remove(ctx context.Context, ownerID, term string) error {
	const opn = "subscriptions.Remove"

	term = NormalizeTerm(term)

	unlock := s.locks.Lock(term)
	defer unlock()

	if err := s.registry.RemoveSearch(ctx, ownerID, term); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}
	if err := s.ledger.ForgetSearch(ctx, ownerID, term); err != nil {
		return fmt.Errorf("%s: failed to forget ledger entries: %w", opn, err)
	}

	terms, err := s.registry.Terms(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to list terms: %w", opn, err)
	}
	if !slices.Contains(terms, term) {
		if err = s.store.DeleteSnapshot(ctx, term); err != nil {
			return fmt.Errorf("%s: failed to delete snapshot: %w", opn, err)
		}
		s.log.DebugContext(ctx, "Dropped unreferenced snapshot", "op", opn, "term", term)
	}

	s.log.InfoContext(ctx, "Search removed", "op", opn, "owner", ownerID, "term", term)

	return nil
}

// List returns the searches of one owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.MonitoredSearch, error) {
	const opn = "subscriptions.List"

	searches, err := s.registry.SearchesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return searches, nil
}

// Snapshot returns the stored listings of a term, most recent first.
func (s *Service) Snapshot(ctx context.Context, term string) ([]models.Listing, error) {
	const opn = "subscriptions.Snapshot"

	snap, err := s.store.LoadSnapshot(ctx, NormalizeTerm(term))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return snap.Listings, nil
}

func cleanExclude(words []string) []string {
	out := []string{}
	for _, w := range words {
		w = NormalizeTerm(w)
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}

	return out
}

package checker

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/deal-watch/internal/delivery"
	"github.com/Houeta/deal-watch/internal/lib/keylock"
	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/parser"
	"github.com/Houeta/deal-watch/internal/repository"
)

// Selector produces the push obligations of a cycle.
type Selector interface {
	Select(ctx context.Context) ([]models.Obligation, error)
}

// Interface is implemented by Checker.
type Interface interface {
	// RunCycle performs one scrape-and-notify pass over every monitored term.
	RunCycle(ctx context.Context) (*models.CycleReport, error)
}

// Options tune a cycle.
type Options struct {
	// MaxPages caps the result pages fetched per term. Values below 1 mean 1.
	MaxPages int
	// Retention is how long ledger entries are kept. Zero disables pruning.
	Retention time.Duration
}

// Deps are the collaborators of a Checker.
type Deps struct {
	Fetcher  parser.PageFetcher
	Parser   parser.HTMLParser
	Registry repository.Registry
	Store    repository.SnapshotStore
	Ledger   repository.Ledger
	Selector Selector
	Pusher   delivery.Pusher
	// Locks is shared with the registry front-end so that writes to one term are serialized.
	Locks *keylock.Locker
}

// Checker is an orchestrator that performs a full scrape-and-notify cycle.
type Checker struct {
	log  *slog.Logger
	deps Deps
	opts Options
	now  func() time.Time
}

var _ Interface = (*Checker)(nil)

// NewChecker creates a new Checker instance.
func NewChecker(log *slog.Logger, deps Deps, opts Options) *Checker {
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	if deps.Locks == nil {
		deps.Locks = &keylock.Locker{}
	}

	return &Checker{log: log, deps: deps, opts: opts, now: time.Now}
}

// RunCycle refreshes the snapshot of every monitored term, then selects and pushes the
// obligations. A failing term does not stop the others; its error is joined into the
// returned error next to a complete report.
func (c *Checker) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	const opn = "checker.RunCycle"
	log := c.log.With("op", opn)

	// 1. Terms to refresh
	terms, err := c.deps.Registry.Terms(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list terms: %w", opn, err)
	}
	report := &models.CycleReport{Terms: len(terms)}
	log.InfoContext(ctx, "Starting cycle", "terms", len(terms))

	// 2. Snapshot refresh, isolated per term
	var errs []error
	for _, term := range terms {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: %w", opn, ctx.Err()))
			break
		}

		changed, refreshErr := c.refreshTerm(ctx, term)
		switch {
		case refreshErr != nil:
			report.Failed++
			errs = append(errs, fmt.Errorf("%s: term %q: %w", opn, term, refreshErr))
			log.ErrorContext(ctx, "Failed to refresh term", "term", term, "error", refreshErr)
		case changed:
			report.Refreshed++
		default:
			report.Unchanged++
		}
	}

	// A cancelled cycle records and pushes nothing.
	if ctx.Err() != nil {
		log.WarnContext(ctx, "Cycle cancelled before delivery", "refreshed", report.Refreshed)
		return report, errors.Join(errs...)
	}

	// 3. Selection and delivery
	obligations, err := c.deps.Selector.Select(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: selection: %w", opn, err))
	}
	report.Obligations = len(obligations)

	for _, ob := range obligations {
		if c.deliver(ctx, ob) {
			report.Pushed++
		}
	}

	// 4. Ledger housekeeping
	if c.opts.Retention > 0 {
		removed, pruneErr := c.deps.Ledger.Prune(ctx, c.now().Add(-c.opts.Retention))
		if pruneErr != nil {
			log.WarnContext(ctx, "Failed to prune notified ledger", "error", pruneErr)
		} else if removed > 0 {
			log.DebugContext(ctx, "Pruned notified ledger", "removed", removed)
		}
	}

	log.InfoContext(ctx, "Cycle complete",
		"refreshed", report.Refreshed,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"obligations", report.Obligations,
		"pushed", report.Pushed,
	)

	return report, errors.Join(errs...)
}

// refreshTerm fetches and parses the result pages of a term and replaces its snapshot
// unless the pages are byte-identical to the ones stored last time. The term lock is
// only held around the store, never across network calls.
func (c *Checker) refreshTerm(ctx context.Context, term string) (bool, error) {
	bodies, listings, err := c.fetchTerm(ctx, term)
	if err != nil {
		return false, err
	}

	pageHash := calculateHash(bodies...)

	unlock := c.deps.Locks.Lock(term)
	defer unlock()

	// An unreadable previous snapshot must not keep the term from healing.
	oldHash, err := c.deps.Store.SnapshotHash(ctx, term)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to read stored page hash, replacing snapshot", "term", term, "error", err)
		oldHash = ""
	}
	if oldHash != "" && oldHash == pageHash {
		c.log.DebugContext(ctx, "Page hash has not changed", "term", term)
		return false, nil
	}

	listings = dedupe(listings)
	models.SortByAge(listings)

	snap := models.Snapshot{Term: term, PageHash: pageHash, Listings: listings, UpdatedAt: c.now()}
	if err = c.deps.Store.ReplaceSnapshot(ctx, snap); err != nil {
		return false, fmt.Errorf("failed to replace snapshot: %w", err)
	}
	c.log.DebugContext(ctx, "Snapshot replaced", "term", term, "listings", len(listings))

	return true, nil
}

// fetchTerm downloads and parses up to MaxPages result pages, following the next page token.
func (c *Checker) fetchTerm(ctx context.Context, term string) ([][]byte, []models.Listing, error) {
	var (
		bodies   [][]byte
		listings []models.Listing
		token    string
	)
	for page := 0; page < c.opts.MaxPages; page++ {
		body, next, err := c.deps.Fetcher.FetchSearchPage(ctx, term, token)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch page %d: %w", page+1, err)
		}

		parsed, err := c.deps.Parser.Parse(ctx, bytes.NewReader(body))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse page %d: %w", page+1, err)
		}

		bodies = append(bodies, body)
		listings = append(listings, parsed...)

		if next == "" {
			break
		}
		token = next
	}

	return bodies, listings, nil
}

// deliver records the obligation in the ledger and pushes it once. A listing that cannot
// be recorded is not pushed, so it is never delivered twice.
func (c *Checker) deliver(ctx context.Context, ob models.Obligation) bool {
	log := c.log.With("owner", ob.OwnerID, "term", ob.SearchTerm, "listing", ob.Listing.ListingURL)

	err := c.deps.Ledger.MarkNotified(ctx, ob.OwnerID, ob.SearchTerm, ob.Listing.ListingURL, c.now())
	if err != nil {
		log.ErrorContext(ctx, "Failed to record notification", "error", err)
		return false
	}

	if err = c.deps.Pusher.Push(ctx, ob); err != nil {
		log.WarnContext(ctx, "Failed to push listing", "error", err)
		return false
	}

	return true
}

// calculateHash calculates the SHA256 hash over the concatenated pages.
func calculateHash(pages ...[]byte) string {
	h := sha256.New()
	for _, p := range pages {
		h.Write(p)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}

// dedupe keeps the first occurrence of every listing URL. Paged results may repeat
// listings that moved between pages while they were fetched.
func dedupe(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.ListingURL]; ok {
			continue
		}
		seen[l.ListingURL] = struct{}{}
		out = append(out, l)
	}

	return out
}

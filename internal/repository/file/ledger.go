package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"time"
)

type ledgerKey struct {
	OwnerID    string
	SearchTerm string
	ListingURL string
}

type ledgerEntry struct {
	NotifiedAt time.Time
}

// ledgerRecord is one line of the persisted ledger.
type ledgerRecord struct {
	OwnerID    string    `json:"owner_id"`
	SearchTerm string    `json:"search_term"`
	ListingURL string    `json:"listing_url"`
	NotifiedAt time.Time `json:"notified_at"`
}

func readLedger(path string) (map[ledgerKey]ledgerEntry, error) {
	ledger := make(map[ledgerKey]ledgerEntry)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ledger, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(data) == 0 {
		return ledger, nil
	}

	var records []ledgerRecord
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}
	for _, rec := range records {
		ledger[ledgerKey{rec.OwnerID, rec.SearchTerm, rec.ListingURL}] = ledgerEntry{NotifiedAt: rec.NotifiedAt}
	}

	return ledger, nil
}

// saveLedger rewrites the ledger document. Callers hold ledgerMu.
func (r *Repository) saveLedger() error {
	records := make([]ledgerRecord, 0, len(r.ledger))
	for k, e := range r.ledger {
		records = append(records, ledgerRecord{
			OwnerID:    k.OwnerID,
			SearchTerm: k.SearchTerm,
			ListingURL: k.ListingURL,
			NotifiedAt: e.NotifiedAt,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].NotifiedAt.Before(records[j].NotifiedAt)
	})

	return writeAtomic(r.path(ledgerFile), func(w io.Writer) error {
		return json.NewEncoder(w).Encode(records)
	})
}

// WasNotified reports whether the listing was already pushed for this owner's search.
func (r *Repository) WasNotified(_ context.Context, ownerID, term, listingURL string) (bool, error) {
	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	_, ok := r.ledger[ledgerKey{ownerID, term, listingURL}]

	return ok, nil
}

// MarkNotified records a push. Recording the same listing twice keeps the first entry.
func (r *Repository) MarkNotified(_ context.Context, ownerID, term, listingURL string, at time.Time) error {
	const opn = "repository.file.MarkNotified"

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	key := ledgerKey{ownerID, term, listingURL}
	if _, ok := r.ledger[key]; ok {
		return nil
	}
	r.ledger[key] = ledgerEntry{NotifiedAt: at.UTC()}

	if err := r.saveLedger(); err != nil {
		delete(r.ledger, key)
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// ForgetSearch deletes the ledger entries of one owner's search.
func (r *Repository) ForgetSearch(_ context.Context, ownerID, term string) error {
	const opn = "repository.file.ForgetSearch"

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	removed := r.removeWhere(func(k ledgerKey, _ ledgerEntry) bool {
		return k.OwnerID == ownerID && k.SearchTerm == term
	})
	if removed == 0 {
		return nil
	}

	if err := r.saveLedger(); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// Prune deletes the ledger entries recorded before the given time.
func (r *Repository) Prune(_ context.Context, before time.Time) (int64, error) {
	const opn = "repository.file.Prune"

	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	removed := r.removeWhere(func(_ ledgerKey, e ledgerEntry) bool {
		return e.NotifiedAt.Before(before)
	})
	if removed == 0 {
		return 0, nil
	}

	if err := r.saveLedger(); err != nil {
		return 0, fmt.Errorf("%s: %w", opn, err)
	}

	return removed, nil
}

func (r *Repository) removeWhere(match func(ledgerKey, ledgerEntry) bool) int64 {
	var removed int64
	for k, e := range r.ledger {
		if match(k, e) {
			delete(r.ledger, k)
			removed++
		}
	}

	return removed
}

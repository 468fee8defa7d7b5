package sqlite

import (
	"context"
	"fmt"
	"time"
)

// WasNotified reports whether the listing was already pushed for this owner's search.
func (r *Repository) WasNotified(ctx context.Context, ownerID, term, listingURL string) (bool, error) {
	const opn = "repository.sqlite.WasNotified"

	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM notified WHERE owner_id = ? AND search_term = ? AND listing_url = ?)",
		ownerID, term, listingURL,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", opn, err)
	}

	return exists, nil
}

// MarkNotified records a push. Recording the same listing twice keeps the first entry.
func (r *Repository) MarkNotified(ctx context.Context, ownerID, term, listingURL string, at time.Time) error {
	const opn = "repository.sqlite.MarkNotified"
	_, err := r.db.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO notified (owner_id, search_term, listing_url, notified_at) VALUES (?, ?, ?, ?)",
		ownerID, term, listingURL, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// ForgetSearch deletes the ledger entries of one owner's search.
func (r *Repository) ForgetSearch(ctx context.Context, ownerID, term string) error {
	const opn = "repository.sqlite.ForgetSearch"
	_, err := r.db.ExecContext(ctx, "DELETE FROM notified WHERE owner_id = ? AND search_term = ?", ownerID, term)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// Prune deletes the ledger entries recorded before the given time.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	const opn = "repository.sqlite.Prune"
	res, err := r.db.ExecContext(ctx, "DELETE FROM notified WHERE notified_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opn, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get affected rows: %w", opn, err)
	}

	return removed, nil
}

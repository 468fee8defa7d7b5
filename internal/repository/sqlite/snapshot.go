package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/deal-watch/internal/models"
)

// LoadSnapshot returns the stored snapshot of a term. A term without a snapshot yields an empty one.
// The header and the listings are read in one transaction so they always belong to the same replace.
func (r *Repository) LoadSnapshot(ctx context.Context, term string) (models.Snapshot, error) {
	const opn = "repository.sqlite.LoadSnapshot"

	snap := models.Snapshot{Term: term, Listings: []models.Listing{}}

	// 1. begin read transaction
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true}) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only, nothing to undo

	// 2. Get snapshot header
	err = tx.QueryRowContext(ctx, "SELECT page_hash, updated_at FROM snapshots WHERE term = ?", term).
		Scan(&snap.PageHash, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, nil
		}
		return models.Snapshot{}, fmt.Errorf("%s: failed to get snapshot header: %w", opn, err)
	}

	// 3. Get listings in stored order
	rows, err := tx.QueryContext(
		ctx,
		`SELECT listing_url, title, price, stricken_price, seller_url, age, age_hours, is_bumped
		FROM listings WHERE term = ? ORDER BY position`,
		term,
	)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: failed to get listings: %w", opn, err)
	}
	defer rows.Close()

	// 4. Scan every row to Listing structure
	for rows.Next() {
		var (
			l        models.Listing
			stricken sql.NullFloat64
		)
		if err = rows.Scan(
			&l.ListingURL, &l.Title, &l.Price, &stricken, &l.SellerURL, &l.Age, &l.AgeHours, &l.IsBumped,
		); err != nil {
			return models.Snapshot{}, fmt.Errorf("%s: failed to scan listing: %w", opn, err)
		}
		if stricken.Valid {
			l.StrickenPrice = &stricken.Float64
		}
		snap.Listings = append(snap.Listings, l)
	}

	if err = rows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return snap, nil
}

// SnapshotHash returns the page hash of the stored snapshot without reading its listings.
func (r *Repository) SnapshotHash(ctx context.Context, term string) (string, error) {
	const opn = "repository.sqlite.SnapshotHash"

	var hash string
	err := r.db.QueryRowContext(ctx, "SELECT page_hash FROM snapshots WHERE term = ?", term).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%s: %w", opn, err)
	}

	return hash, nil
}

// ReplaceSnapshot atomically replaces the snapshot of snap.Term using a transaction.
func (r *Repository) ReplaceSnapshot(ctx context.Context, snap models.Snapshot) error {
	const opn = "repository.sqlite.ReplaceSnapshot"

	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	// 1. begin transaction
	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit only returns sql.ErrTxDone.

	// 2. Update (or insert) the snapshot header.
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO snapshots (term, page_hash, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET page_hash = excluded.page_hash, updated_at = excluded.updated_at`,
		snap.Term, snap.PageHash, updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to upsert snapshot header: %w", opn, err)
	}

	// 3. Completely clear the previous listings of the term.
	if _, err = tx.ExecContext(ctx, "DELETE FROM listings WHERE term = ?", snap.Term); err != nil {
		return fmt.Errorf("%s: failed to delete old listings: %w", opn, err)
	}

	// 4. Preparing a request for the effective insertion of new listings.
	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO listings
		(term, position, listing_url, title, price, stricken_price, seller_url, age, age_hours, is_bumped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare insert statement: %w", opn, err)
	}
	defer stmt.Close()

	// 5. Insert each listing keeping its position.
	for pos, l := range snap.Listings {
		var stricken sql.NullFloat64
		if l.StrickenPrice != nil {
			stricken = sql.NullFloat64{Float64: *l.StrickenPrice, Valid: true}
		}
		if _, err = stmt.ExecContext(
			ctx,
			snap.Term, pos, l.ListingURL, l.Title, l.Price, stricken, l.SellerURL, l.Age, l.AgeHours, l.IsBumped,
		); err != nil {
			return fmt.Errorf("%s: failed to insert listing %s: %w", opn, l.ListingURL, err)
		}
	}

	// 6. If all operations went through without errors - confirm the transaction.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

// DeleteSnapshot removes the snapshot of a term together with its listings.
func (r *Repository) DeleteSnapshot(ctx context.Context, term string) error {
	const opn = "repository.sqlite.DeleteSnapshot"

	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit only returns sql.ErrTxDone.

	if _, err = tx.ExecContext(ctx, "DELETE FROM listings WHERE term = ?", term); err != nil {
		return fmt.Errorf("%s: failed to delete listings: %w", opn, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM snapshots WHERE term = ?", term); err != nil {
		return fmt.Errorf("%s: failed to delete snapshot: %w", opn, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}

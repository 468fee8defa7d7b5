package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
)

const selectSearches = "SELECT owner_id, search_term, min_price, max_price, exclude FROM monitored_searches"

// AddSearch inserts the search or replaces the constraints of an existing one.
func (r *Repository) AddSearch(ctx context.Context, search models.MonitoredSearch) error {
	const opn = "repository.sqlite.AddSearch"

	if search.SearchTerm == "" {
		return fmt.Errorf("%s: %w", opn, repository.ErrEmptyTerm)
	}

	exclude := search.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	excludeJSON, err := json.Marshal(exclude)
	if err != nil {
		return fmt.Errorf("%s: failed to encode exclude terms: %w", opn, err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO monitored_searches (owner_id, search_term, min_price, max_price, exclude, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, search_term) DO UPDATE SET
			min_price = excluded.min_price, max_price = excluded.max_price, exclude = excluded.exclude`,
		search.OwnerID, search.SearchTerm, nullable(search.MinPrice), nullable(search.MaxPrice),
		string(excludeJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// RemoveSearch deletes one owner's search.
func (r *Repository) RemoveSearch(ctx context.Context, ownerID, term string) error {
	const opn = "repository.sqlite.RemoveSearch"

	res, err := r.db.ExecContext(
		ctx, "DELETE FROM monitored_searches WHERE owner_id = ? AND search_term = ?", ownerID, term,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get affected rows: %w", opn, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", opn, repository.ErrSearchNotFound)
	}

	return nil
}

// ListSearches returns every monitored search of every owner.
func (r *Repository) ListSearches(ctx context.Context) ([]models.MonitoredSearch, error) {
	return r.querySearches(ctx, "repository.sqlite.ListSearches", selectSearches+" ORDER BY owner_id, search_term")
}

// SearchesByOwner returns the monitored searches of one owner.
func (r *Repository) SearchesByOwner(ctx context.Context, ownerID string) ([]models.MonitoredSearch, error) {
	return r.querySearches(
		ctx, "repository.sqlite.SearchesByOwner", selectSearches+" WHERE owner_id = ? ORDER BY search_term", ownerID,
	)
}

// Terms returns the distinct search terms of all owners.
func (r *Repository) Terms(ctx context.Context) ([]string, error) {
	const opn = "repository.sqlite.Terms"
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT search_term FROM monitored_searches ORDER BY search_term")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var terms []string
	for rows.Next() {
		var term string
		if err = rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("%s: failed to scan search_term: %w", opn, err)
		}
		terms = append(terms, term)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return terms, nil
}

func (r *Repository) querySearches(
	ctx context.Context,
	opn, query string,
	args ...any,
) ([]models.MonitoredSearch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	defer rows.Close()

	var searches []models.MonitoredSearch
	for rows.Next() {
		var (
			s           models.MonitoredSearch
			minP, maxP  sql.NullFloat64
			excludeJSON string
		)
		if err = rows.Scan(&s.OwnerID, &s.SearchTerm, &minP, &maxP, &excludeJSON); err != nil {
			return nil, fmt.Errorf("%s: failed to scan search: %w", opn, err)
		}
		if err = json.Unmarshal([]byte(excludeJSON), &s.Exclude); err != nil {
			return nil, fmt.Errorf("%s: failed to decode exclude terms of %q: %w", opn, s.SearchTerm, err)
		}
		s.MinPrice = fromNullable(minP)
		s.MaxPrice = fromNullable(maxP)
		searches = append(searches, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	return searches, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64

	return &f
}

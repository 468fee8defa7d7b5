package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/Houeta/deal-watch/internal/lib/normalize"
	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
)

// Snapshot table columns, in file order.
const (
	colTitle         = "title"
	colPrice         = "price"
	colAge           = "age"
	colSellerURL     = "seller_url"
	colListingURL    = "listing_url"
	colStrickenPrice = "stricken_price"
	colIsBumped      = "is_bumped"
)

var snapshotHeader = []string{ //nolint:gochecknoglobals // fixed file layout
	colTitle, colPrice, colAge, colSellerURL, colListingURL, colStrickenPrice, colIsBumped,
}

// snapshotPath maps a term to its table file. Escaping keeps distinct terms in distinct files.
func (r *Repository) snapshotPath(term string) string {
	return r.path(url.PathEscape(term) + ".csv")
}

// ReplaceSnapshot rewrites the table of snap.Term.
func (r *Repository) ReplaceSnapshot(_ context.Context, snap models.Snapshot) error {
	const opn = "repository.file.ReplaceSnapshot"

	if snap.Term == "" {
		return fmt.Errorf("%s: %w", opn, repository.ErrEmptyTerm)
	}

	unlock := r.terms.Lock(snap.Term)
	defer unlock()

	err := writeAtomic(r.snapshotPath(snap.Term), func(w io.Writer) error {
		return writeSnapshot(w, snap.Listings)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	r.hashMu.Lock()
	r.hashes[snap.Term] = snap.PageHash
	r.hashMu.Unlock()

	return nil
}

// LoadSnapshot reads the table of a term. A missing table yields an empty snapshot.
// It waits for a running replace of the same term, so table and hash always match.
func (r *Repository) LoadSnapshot(_ context.Context, term string) (models.Snapshot, error) {
	const opn = "repository.file.LoadSnapshot"

	unlock := r.terms.Lock(term)
	defer unlock()

	snap := models.Snapshot{Term: term, Listings: []models.Listing{}}

	f, err := os.Open(r.snapshotPath(term))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, nil
		}
		return models.Snapshot{}, fmt.Errorf("%s: %w", opn, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", opn, err)
	}

	if snap.Listings, err = readSnapshot(f); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %s: %w", opn, f.Name(), err)
	}
	snap.UpdatedAt = info.ModTime()

	r.hashMu.RLock()
	snap.PageHash = r.hashes[term]
	r.hashMu.RUnlock()

	return snap, nil
}

// SnapshotHash returns the page hash recorded by the last ReplaceSnapshot of this process.
func (r *Repository) SnapshotHash(_ context.Context, term string) (string, error) {
	r.hashMu.RLock()
	defer r.hashMu.RUnlock()

	return r.hashes[term], nil
}

// DeleteSnapshot removes the table of a term.
func (r *Repository) DeleteSnapshot(_ context.Context, term string) error {
	const opn = "repository.file.DeleteSnapshot"

	unlock := r.terms.Lock(term)
	defer unlock()

	if err := os.Remove(r.snapshotPath(term)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", opn, err)
	}

	r.hashMu.Lock()
	delete(r.hashes, term)
	r.hashMu.Unlock()

	return nil
}

func writeSnapshot(w io.Writer, listings []models.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, l := range listings {
		stricken := ""
		if l.StrickenPrice != nil {
			stricken = formatPrice(*l.StrickenPrice)
		}
		row := []string{
			l.Title,
			formatPrice(l.Price),
			l.Age,
			l.SellerURL,
			l.ListingURL,
			stricken,
			strconv.FormatBool(l.IsBumped),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", l.ListingURL, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func readSnapshot(rd io.Reader) ([]models.Listing, error) {
	cr := csv.NewReader(rd)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Listing{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{colTitle, colPrice, colAge, colSellerURL, colListingURL} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(rec) {
			return rec[idx]
		}
		return ""
	}

	listings := []models.Listing{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		price, err := strconv.ParseFloat(field(rec, colPrice), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price in row %d: %w", len(listings)+1, err)
		}

		l := models.Listing{
			ListingURL: field(rec, colListingURL),
			Title:      field(rec, colTitle),
			Price:      price,
			SellerURL:  field(rec, colSellerURL),
			Age:        field(rec, colAge),
		}
		l.AgeHours = normalize.AgeToHours(l.Age)
		if s := field(rec, colStrickenPrice); s != "" {
			if v, sErr := strconv.ParseFloat(s, 64); sErr == nil {
				l.StrickenPrice = &v
			}
		}
		l.IsBumped, _ = strconv.ParseBool(field(rec, colIsBumped))

		listings = append(listings, l)
	}

	return listings, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

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

	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
)

// searchConstraints is the persisted value of one (owner, term) pair.
type searchConstraints struct {
	MaxPrice *float64 `json:"max_price"`
	MinPrice *float64 `json:"min_price"`
	Exclude  []string `json:"exclude"`
}

// registryDoc maps owner id → search term → constraints.
type registryDoc map[string]map[string]searchConstraints

func readRegistry(path string) (registryDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return registryDoc{}, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	doc := registryDoc{}
	if len(data) == 0 {
		return doc, nil
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	return doc, nil
}

func (d registryDoc) clone() registryDoc {
	out := make(registryDoc, len(d))
	for owner, searches := range d {
		inner := make(map[string]searchConstraints, len(searches))
		for term, c := range searches {
			inner[term] = c
		}
		out[owner] = inner
	}

	return out
}

// commitRegistry persists doc and makes it current. Callers hold regMu.
func (r *Repository) commitRegistry(doc registryDoc) error {
	err := writeAtomic(r.path(registryFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
	if err != nil {
		return err
	}
	r.registry = doc

	return nil
}

// AddSearch inserts the search or replaces the constraints of an existing one.
func (r *Repository) AddSearch(_ context.Context, search models.MonitoredSearch) error {
	const opn = "repository.file.AddSearch"

	if search.SearchTerm == "" {
		return fmt.Errorf("%s: %w", opn, repository.ErrEmptyTerm)
	}

	exclude := search.Exclude
	if exclude == nil {
		exclude = []string{}
	}

	r.regMu.Lock()
	defer r.regMu.Unlock()

	doc := r.registry.clone()
	if doc[search.OwnerID] == nil {
		doc[search.OwnerID] = make(map[string]searchConstraints)
	}
	doc[search.OwnerID][search.SearchTerm] = searchConstraints{
		MaxPrice: search.MaxPrice,
		MinPrice: search.MinPrice,
		Exclude:  append([]string(nil), exclude...),
	}

	if err := r.commitRegistry(doc); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// RemoveSearch deletes one owner's search.
func (r *Repository) RemoveSearch(_ context.Context, ownerID, term string) error {
	const opn = "repository.file.RemoveSearch"

	r.regMu.Lock()
	defer r.regMu.Unlock()

	if _, ok := r.registry[ownerID][term]; !ok {
		return fmt.Errorf("%s: %w", opn, repository.ErrSearchNotFound)
	}

	doc := r.registry.clone()
	delete(doc[ownerID], term)
	if len(doc[ownerID]) == 0 {
		delete(doc, ownerID)
	}

	if err := r.commitRegistry(doc); err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// ListSearches returns every search ordered by owner and term.
func (r *Repository) ListSearches(_ context.Context) ([]models.MonitoredSearch, error) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()

	owners := make([]string, 0, len(r.registry))
	for owner := range r.registry {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var searches []models.MonitoredSearch
	for _, owner := range owners {
		searches = append(searches, r.ownerSearches(owner)...)
	}

	return searches, nil
}

// SearchesByOwner returns the searches of one owner ordered by term.
func (r *Repository) SearchesByOwner(_ context.Context, ownerID string) ([]models.MonitoredSearch, error) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()

	return r.ownerSearches(ownerID), nil
}

// Terms returns the distinct search terms of all owners.
func (r *Repository) Terms(_ context.Context) ([]string, error) {
	r.regMu.RLock()
	defer r.regMu.RUnlock()

	seen := make(map[string]struct{})
	var terms []string
	for _, searches := range r.registry {
		for term := range searches {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	return terms, nil
}

// ownerSearches expects regMu to be held.
func (r *Repository) ownerSearches(ownerID string) []models.MonitoredSearch {
	searches := r.registry[ownerID]

	terms := make([]string, 0, len(searches))
	for term := range searches {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var out []models.MonitoredSearch
	for _, term := range terms {
		c := searches[term]
		exclude := append([]string{}, c.Exclude...)
		out = append(out, models.MonitoredSearch{
			OwnerID:    ownerID,
			SearchTerm: term,
			MaxPrice:   c.MaxPrice,
			MinPrice:   c.MinPrice,
			Exclude:    exclude,
		})
	}

	return out
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Houeta/deal-watch/internal/models"
)

var (
	ErrSearchNotFound = errors.New("monitored search not found")
	ErrEmptyTerm      = errors.New("search term is empty")
)

// SnapshotStore keeps the latest listings per search term.
type SnapshotStore interface {
	// ReplaceSnapshot overwrites the snapshot of snap.Term as one unit.
	ReplaceSnapshot(ctx context.Context, snap models.Snapshot) error
	// LoadSnapshot returns the stored snapshot; an unknown term yields an empty snapshot.
	LoadSnapshot(ctx context.Context, term string) (models.Snapshot, error)
	// SnapshotHash returns the page hash of the stored snapshot, "" when unknown.
	SnapshotHash(ctx context.Context, term string) (string, error)
	// DeleteSnapshot drops the snapshot of a term. Unknown terms are ignored.
	DeleteSnapshot(ctx context.Context, term string) error
}

// Registry keeps monitored searches per owner.
type Registry interface {
	// AddSearch inserts or replaces the search identified by (OwnerID, SearchTerm).
	AddSearch(ctx context.Context, search models.MonitoredSearch) error
	// RemoveSearch deletes a search, ErrSearchNotFound when it does not exist.
	RemoveSearch(ctx context.Context, ownerID, term string) error
	ListSearches(ctx context.Context) ([]models.MonitoredSearch, error)
	SearchesByOwner(ctx context.Context, ownerID string) ([]models.MonitoredSearch, error)
	// Terms returns every distinct term referenced by at least one search.
	Terms(ctx context.Context) ([]string, error)
}

// Ledger remembers which listings were already pushed to which owner.
type Ledger interface {
	WasNotified(ctx context.Context, ownerID, term, listingURL string) (bool, error)
	MarkNotified(ctx context.Context, ownerID, term, listingURL string, at time.Time) error
	// ForgetSearch drops every entry of one owner's search.
	ForgetSearch(ctx context.Context, ownerID, term string) error
	// Prune drops entries recorded before the given time and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Storage is a backend providing every store.
type Storage interface {
	SnapshotStore
	Registry
	Ledger
	Close() error
}

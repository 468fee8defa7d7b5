// Package file stores snapshots as one CSV table per search term and the registry
// and notification ledger as JSON documents, all inside one data directory.
package file

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Houeta/deal-watch/internal/lib/keylock"
	"github.com/Houeta/deal-watch/internal/repository"
)

const (
	registryFile = "monitored_searches.json"
	ledgerFile   = "notified.json"
	dirPerm      = 0o755
)

// Repository is a file backed repository.Storage.
type Repository struct {
	dir string
	log *slog.Logger

	// terms serializes snapshot access per term.
	terms keylock.Locker

	// hashes caches the page hash of the latest snapshot per term.
	hashMu sync.RWMutex
	hashes map[string]string

	regMu    sync.RWMutex
	registry registryDoc

	ledgerMu sync.Mutex
	ledger   map[ledgerKey]ledgerEntry
}

var _ repository.Storage = (*Repository)(nil)

// NewRepository opens the data directory, creating it when missing, and loads the
// registry and ledger documents.
func NewRepository(log *slog.Logger, dir string) (*Repository, error) {
	const opn = "repository.file.NewRepository"

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%s: failed to create data directory: %w", opn, err)
	}

	repo := &Repository{dir: dir, log: log, hashes: make(map[string]string)}

	var err error
	if repo.registry, err = readRegistry(repo.path(registryFile)); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	if repo.ledger, err = readLedger(repo.path(ledgerFile)); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return repo, nil
}

// Close is a no-op: every mutation is already on disk.
func (r *Repository) Close() error {
	return nil
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, name)
}

// writeAtomic writes a file through a temporary sibling and renames it into place,
// so readers observe either the previous or the new content.
func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if err = write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}

	return nil
}

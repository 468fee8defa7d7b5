package file_test

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
	"github.com/Houeta/deal-watch/internal/repository/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*file.Repository, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data")
	repo, err := file.NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), dir)
	require.NoError(t, err)

	return repo, dir
}

func ptr(v float64) *float64 { return &v }

func TestRepository_Snapshot(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := t.Context()

	listings := []models.Listing{
		{
			ListingURL: "/p/a-1/", Title: "iPhone, mint", Price: 1234.5, StrickenPrice: ptr(1500),
			SellerURL: "/u/a/", Age: "45 seconds", AgeHours: 0,
		},
		{ListingURL: "/p/b-2/", Title: "iPhone 11", Price: 0, SellerURL: "/u/b/", Age: "3 hours", AgeHours: 3, IsBumped: true},
	}

	t.Run("missing snapshot is empty", func(t *testing.T) {
		snap, err := repo.LoadSnapshot(ctx, "iphone 13")
		require.NoError(t, err)
		assert.Empty(t, snap.Listings)
		assert.Equal(t, "iphone 13", snap.Term)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, repo.ReplaceSnapshot(ctx, models.Snapshot{Term: "iphone 13", PageHash: "h1", Listings: listings}))

		snap, err := repo.LoadSnapshot(ctx, "iphone 13")
		require.NoError(t, err)
		assert.Equal(t, listings, snap.Listings)
		assert.Equal(t, "h1", snap.PageHash)
		assert.False(t, snap.UpdatedAt.IsZero())
	})

	t.Run("table layout", func(t *testing.T) {
		f, err := os.Open(filepath.Join(dir, "iphone%2013.csv"))
		require.NoError(t, err)
		defer f.Close()

		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t,
			[]string{"title", "price", "age", "seller_url", "listing_url", "stricken_price", "is_bumped"},
			records[0],
		)
		assert.Equal(t, []string{"iPhone, mint", "1234.5", "45 seconds", "/u/a/", "/p/a-1/", "1500", "false"}, records[1])
		assert.Equal(t, []string{"iPhone 11", "0", "3 hours", "/u/b/", "/p/b-2/", "", "true"}, records[2])
	})

	t.Run("replace is wholesale", func(t *testing.T) {
		require.NoError(t, repo.ReplaceSnapshot(ctx, models.Snapshot{Term: "iphone 13", Listings: listings[1:]}))

		snap, err := repo.LoadSnapshot(ctx, "iphone 13")
		require.NoError(t, err)
		assert.Equal(t, listings[1:], snap.Listings)
	})

	t.Run("terms with separators stay distinct", func(t *testing.T) {
		require.NoError(t, repo.ReplaceSnapshot(ctx, models.Snapshot{Term: "iphone_13", Listings: listings[:1]}))
		require.NoError(t, repo.ReplaceSnapshot(ctx, models.Snapshot{Term: "a/b", Listings: listings[:1]}))

		snap, err := repo.LoadSnapshot(ctx, "iphone 13")
		require.NoError(t, err)
		assert.Equal(t, listings[1:], snap.Listings)

		snap, err = repo.LoadSnapshot(ctx, "a/b")
		require.NoError(t, err)
		assert.Equal(t, listings[:1], snap.Listings)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSnapshot(ctx, "iphone 13"))
		require.NoError(t, repo.DeleteSnapshot(ctx, "iphone 13"))

		snap, err := repo.LoadSnapshot(ctx, "iphone 13")
		require.NoError(t, err)
		assert.Empty(t, snap.Listings)
		assert.Empty(t, snap.PageHash)
	})

	t.Run("empty term is rejected", func(t *testing.T) {
		err := repo.ReplaceSnapshot(ctx, models.Snapshot{})
		require.ErrorIs(t, err, repository.ErrEmptyTerm)
	})
}

func TestRepository_LoadSnapshot_Malformed(t *testing.T) {
	repo, dir := newTestRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.csv"), []byte("title,price\nx,1\n"), 0o600))
	_, err := repo.LoadSnapshot(t.Context(), "bad")
	require.ErrorContains(t, err, `missing column "age"`)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "worse.csv"),
		[]byte("title,price,age,seller_url,listing_url\nx,cheap,1 hour,/u/a/,/p/a/\n"),
		0o600,
	))
	_, err = repo.LoadSnapshot(t.Context(), "worse")
	require.ErrorContains(t, err, "invalid price")

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "legacy.csv"),
		[]byte("title,price,age,seller_url,listing_url\nx,10,2 days,/u/a/,/p/a/\n"),
		0o600,
	))
	snap, err := repo.LoadSnapshot(t.Context(), "legacy")
	require.NoError(t, err)
	require.Len(t, snap.Listings, 1)
	assert.InDelta(t, 48.0, snap.Listings[0].AgeHours, 1e-9)
	assert.Nil(t, snap.Listings[0].StrickenPrice)
}

func TestRepository_SnapshotHash(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := t.Context()

	hash, err := repo.SnapshotHash(ctx, "iphone")
	require.NoError(t, err)
	assert.Empty(t, hash)

	// An unreadable table does not block the hash lookup, and a replace overwrites it.
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "iphone.csv"),
		[]byte("title,price,age,seller_url,listing_url\nx,notanumber,1 hour,/u/a/,/p/a/\n"),
		0o600,
	))
	_, err = repo.SnapshotHash(ctx, "iphone")
	require.NoError(t, err)

	fresh := models.Snapshot{
		Term:     "iphone",
		PageHash: "h1",
		Listings: []models.Listing{{ListingURL: "/p/a/", Title: "A", Price: 5, SellerURL: "/u/a/", Age: "1 hour", AgeHours: 1}},
	}
	require.NoError(t, repo.ReplaceSnapshot(ctx, fresh))

	hash, err = repo.SnapshotHash(ctx, "iphone")
	require.NoError(t, err)
	assert.Equal(t, "h1", hash)

	snap, err := repo.LoadSnapshot(ctx, "iphone")
	require.NoError(t, err)
	assert.Equal(t, fresh.Listings, snap.Listings)
}

func TestRepository_ConcurrentReplaceAndLoad(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := t.Context()

	small := models.Snapshot{
		Term:     "iphone",
		PageHash: "small",
		Listings: []models.Listing{{ListingURL: "/p/s-1/", Title: "S", Price: 1, SellerURL: "/u/s/", Age: "1 hour", AgeHours: 1}},
	}
	large := models.Snapshot{Term: "iphone", PageHash: "large"}
	for i := range 40 {
		large.Listings = append(large.Listings, models.Listing{
			ListingURL: fmt.Sprintf("/p/l-%d/", i), Title: "L", Price: float64(i), SellerURL: "/u/l/", Age: "2 hours", AgeHours: 2,
		})
	}
	require.NoError(t, repo.ReplaceSnapshot(ctx, small))

	const readers = 4
	const rounds = 50

	var wg sync.WaitGroup
	wg.Add(1 + readers)

	go func() {
		defer wg.Done()
		for i := range rounds {
			next := small
			if i%2 == 0 {
				next = large
			}
			assert.NoError(t, repo.ReplaceSnapshot(ctx, next))
		}
	}()

	for range readers {
		go func() {
			defer wg.Done()
			for range rounds {
				snap, err := repo.LoadSnapshot(ctx, "iphone")
				if !assert.NoError(t, err) {
					return
				}
				switch snap.PageHash {
				case "small":
					assert.Equal(t, small.Listings, snap.Listings)
				case "large":
					assert.Equal(t, large.Listings, snap.Listings)
				default:
					t.Errorf("unexpected page hash %q", snap.PageHash)
				}
			}
		}()
	}

	wg.Wait()
}

func TestRepository_Registry(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := t.Context()

	iphone := models.MonitoredSearch{OwnerID: "u1", SearchTerm: "iphone", MaxPrice: ptr(500), MinPrice: ptr(0), Exclude: []string{}}
	shared := models.MonitoredSearch{OwnerID: "u2", SearchTerm: "iphone", MinPrice: ptr(100), Exclude: []string{"case"}}

	require.NoError(t, repo.AddSearch(ctx, iphone))
	require.NoError(t, repo.AddSearch(ctx, shared))
	require.NoError(t, repo.AddSearch(ctx, models.MonitoredSearch{OwnerID: "u1", SearchTerm: "bike"}))

	searches, err := repo.ListSearches(ctx)
	require.NoError(t, err)
	require.Len(t, searches, 3)
	assert.Equal(t, "bike", searches[0].SearchTerm)
	assert.Equal(t, iphone, searches[1])
	assert.Equal(t, shared, searches[2])

	terms, err := repo.Terms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bike", "iphone"}, terms)

	t.Run("document shape", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "monitored_searches.json"))
		require.NoError(t, err)

		var doc map[string]map[string]struct {
			MaxPrice *float64 `json:"max_price"`
			MinPrice *float64 `json:"min_price"`
			Exclude  []string `json:"exclude"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		require.Contains(t, doc, "u1")
		assert.InDelta(t, 500.0, *doc["u1"]["iphone"].MaxPrice, 1e-9)
		assert.Nil(t, doc["u1"]["bike"].MaxPrice)
		assert.Equal(t, []string{"case"}, doc["u2"]["iphone"].Exclude)
	})

	t.Run("reload from disk", func(t *testing.T) {
		reopened, err := file.NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), dir)
		require.NoError(t, err)

		again, err := reopened.ListSearches(ctx)
		require.NoError(t, err)
		assert.Equal(t, searches, again)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, repo.RemoveSearch(ctx, "u1", "iphone"))
		require.ErrorIs(t, repo.RemoveSearch(ctx, "u1", "iphone"), repository.ErrSearchNotFound)
		require.ErrorIs(t, repo.RemoveSearch(ctx, "nobody", "iphone"), repository.ErrSearchNotFound)

		own, err := repo.SearchesByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, "bike", own[0].SearchTerm)
	})
}

func TestRepository_Ledger(t *testing.T) {
	repo, dir := newTestRepo(t)
	ctx := t.Context()
	now := time.Now()

	require.NoError(t, repo.MarkNotified(ctx, "u1", "iphone", "/p/a/", now.Add(-48*time.Hour)))
	require.NoError(t, repo.MarkNotified(ctx, "u1", "iphone", "/p/b/", now))
	require.NoError(t, repo.MarkNotified(ctx, "u2", "iphone", "/p/a/", now))

	ok, err := repo.WasNotified(ctx, "u1", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.True(t, ok)

	reopened, err := file.NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), dir)
	require.NoError(t, err)
	ok, err = reopened.WasNotified(ctx, "u2", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.True(t, ok, "ledger survives a restart")

	removed, err := repo.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, repo.ForgetSearch(ctx, "u1", "iphone"))
	ok, err = repo.WasNotified(ctx, "u1", "iphone", "/p/b/")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.WasNotified(ctx, "u2", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRepository_CorruptRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monitored_searches.json"), []byte("{"), 0o600))

	_, err := file.NewRepository(slog.New(slog.NewTextHandler(io.Discard, nil)), dir)
	require.ErrorContains(t, err, "failed to decode registry")
}

package sqlite_test

import (
	"testing"
	"time"

	"github.com/Houeta/deal-watch/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Integration_Ledger(t *testing.T) {
	repo := newTestDB(t)
	ctx := t.Context()
	now := time.Now()

	notified, err := repo.WasNotified(ctx, "u1", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.False(t, notified)

	require.NoError(t, repo.MarkNotified(ctx, "u1", "iphone", "/p/a/", now.Add(-48*time.Hour)))
	require.NoError(t, repo.MarkNotified(ctx, "u1", "iphone", "/p/a/", now), "second mark is ignored")
	require.NoError(t, repo.MarkNotified(ctx, "u1", "iphone", "/p/b/", now))
	require.NoError(t, repo.MarkNotified(ctx, "u2", "iphone", "/p/a/", now))

	notified, err = repo.WasNotified(ctx, "u1", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.True(t, notified)

	notified, err = repo.WasNotified(ctx, "u1", "bike", "/p/a/")
	require.NoError(t, err)
	assert.False(t, notified, "ledger is keyed by search term too")

	removed, err := repo.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, repo.ForgetSearch(ctx, "u1", "iphone"))

	notified, err = repo.WasNotified(ctx, "u1", "iphone", "/p/b/")
	require.NoError(t, err)
	assert.False(t, notified)

	notified, err = repo.WasNotified(ctx, "u2", "iphone", "/p/a/")
	require.NoError(t, err)
	assert.True(t, notified, "other owners keep their entries")
}

func TestRepository_Ledger_Failures(t *testing.T) {
	ctx := t.Context()

	testCases := []struct {
		name   string
		expect string
		call   func(repo *sqlite.Repository) error
		opName string
	}{
		{
			name:   "was notified",
			expect: "SELECT EXISTS",
			call: func(repo *sqlite.Repository) error {
				_, err := repo.WasNotified(ctx, "u1", "iphone", "/p/a/")
				return err
			},
			opName: "repository.sqlite.WasNotified",
		},
		{
			name:   "mark notified",
			expect: "INSERT OR IGNORE INTO notified",
			call: func(repo *sqlite.Repository) error {
				return repo.MarkNotified(ctx, "u1", "iphone", "/p/a/", time.Now())
			},
			opName: "repository.sqlite.MarkNotified",
		},
		{
			name:   "forget search",
			expect: "DELETE FROM notified WHERE owner_id",
			call: func(repo *sqlite.Repository) error {
				return repo.ForgetSearch(ctx, "u1", "iphone")
			},
			opName: "repository.sqlite.ForgetSearch",
		},
		{
			name:   "prune",
			expect: "DELETE FROM notified WHERE notified_at",
			call: func(repo *sqlite.Repository) error {
				_, err := repo.Prune(ctx, time.Now())
				return err
			},
			opName: "repository.sqlite.Prune",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockedRepo(t)
			if tc.name == "was notified" {
				mock.ExpectQuery(tc.expect).WillReturnError(assert.AnError)
			} else {
				mock.ExpectExec(tc.expect).WillReturnError(assert.AnError)
			}

			err := tc.call(repo)

			require.ErrorIs(t, err, assert.AnError)
			require.ErrorContains(t, err, tc.opName)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package bot

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Houeta/deal-watch/internal/models"
)

func TestFormatListings(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://www.carousell.sg")
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Header\nNo listings.", formatListings("Header", nil, 0, base))
	})

	t.Run("omitted_by_caller", func(t *testing.T) {
		t.Parallel()
		reply := formatListings("Header", []models.Listing{{ListingURL: "/p/a/", Title: "A", Price: 1}}, 5, base)
		assert.Equal(t, "Header\n\n1. A\nS$1.00\nhttps://www.carousell.sg/p/a/\n\n...and 5 more.", reply)
	})

	t.Run("long_titles_stay_under_limit", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("📱", 700)
		listings := make([]models.Listing, 20)
		for i := range listings {
			listings[i] = models.Listing{ListingURL: "/p/x/", Title: long, Price: 10}
		}

		reply := formatListings("Header", listings, 0, base)

		assert.LessOrEqual(t, messageLen(reply), maxMessageLen)
		assert.Contains(t, reply, "1. "+long)
		assert.Contains(t, reply, "...and 18 more.")
	})
}

func TestMessageLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, messageLen("abc"))
	assert.Equal(t, 2, messageLen("é·"))
	assert.Equal(t, 2, messageLen("📱"))
}

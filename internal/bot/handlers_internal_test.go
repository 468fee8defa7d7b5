package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Houeta/deal-watch/internal/models"
	"github.com/Houeta/deal-watch/internal/repository"
	"github.com/Houeta/deal-watch/internal/services/subscriptions"
	"github.com/Houeta/deal-watch/test/mocks"
)

func testListings() []models.Listing {
	return []models.Listing{
		{ListingURL: "/p/a/", Title: "iPhone 13", Price: 900, Age: "30 seconds"},
		{ListingURL: "/p/b/", Title: "iPhone 12", Price: 450, Age: "2 hours", AgeHours: 2},
		{ListingURL: "/p/c/", Title: "iPhone 11", Price: 300, Age: "2 hours", AgeHours: 2},
		{ListingURL: "/p/d/", Title: "iPhone case", Price: 0, Age: "3 days", AgeHours: 72, IsBumped: true},
	}
}

func TestAddReply(t *testing.T) {
	t.Parallel()

	t.Run("stored", func(t *testing.T) {
		t.Parallel()

		subs := mocks.NewSubscriptions(t)
		subs.On("Add", mock.Anything, models.MonitoredSearch{OwnerID: "42", SearchTerm: "iPhone 13", MaxPrice: ptr(500)}).
			Return(models.MonitoredSearch{OwnerID: "42", SearchTerm: "iphone 13", MaxPrice: ptr(500)}, nil).Once()

		reply := newTestBot(t, mocks.NewAPI(t), subs).addReply(t.Context(), "42", "iPhone 13 max=500")
		assert.Equal(t, `Watching "iphone 13" (max S$500.00).`, reply)
	})

	t.Run("invalid range", func(t *testing.T) {
		t.Parallel()

		subs := mocks.NewSubscriptions(t)
		subs.On("Add", mock.Anything, mock.AnythingOfType("models.MonitoredSearch")).
			Return(models.MonitoredSearch{}, fmt.Errorf("subscriptions.Add: %w", subscriptions.ErrInvertedRange)).Once()

		reply := newTestBot(t, mocks.NewAPI(t), subs).addReply(t.Context(), "42", "lamp min=9 max=1")
		assert.Contains(t, reply, subscriptions.ErrInvertedRange.Error())
		assert.Contains(t, reply, usageAdd)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()

		subs := mocks.NewSubscriptions(t)
		subs.On("Add", mock.Anything, mock.AnythingOfType("models.MonitoredSearch")).
			Return(models.MonitoredSearch{}, assert.AnError).Once()

		reply := newTestBot(t, mocks.NewAPI(t), subs).addReply(t.Context(), "42", "lamp")
		assert.Equal(t, replyFailure, reply)
	})

	t.Run("usage", func(t *testing.T) {
		t.Parallel()

		reply := newTestBot(t, mocks.NewAPI(t), mocks.NewSubscriptions(t)).addReply(t.Context(), "42", "")
		assert.Contains(t, reply, usageAdd)
	})
}

func TestRemoveReply(t *testing.T) {
	t.Parallel()

	subs := mocks.NewSubscriptions(t)
	subs.On("Remove", mock.Anything, "42", "Desk  Lamp").Return(nil).Once()
	subs.On("Remove", mock.Anything, "42", "bike").Return(repository.ErrSearchNotFound).Once()

	b := newTestBot(t, mocks.NewAPI(t), subs)

	assert.Equal(t, `Stopped watching "desk lamp".`, b.removeReply(t.Context(), "42", "Desk  Lamp"))
	assert.Equal(t, `You are not watching "bike".`, b.removeReply(t.Context(), "42", "bike"))
	assert.Equal(t, usageRemove, b.removeReply(t.Context(), "42", " "))
}

func TestListReply(t *testing.T) {
	t.Parallel()

	subs := mocks.NewSubscriptions(t)
	subs.On("List", mock.Anything, "42").Return([]models.MonitoredSearch{
		{OwnerID: "42", SearchTerm: "bike"},
		{OwnerID: "42", SearchTerm: "iphone", MinPrice: ptr(100), MaxPrice: ptr(500), Exclude: []string{"case"}},
	}, nil).Once()
	subs.On("List", mock.Anything, "7").Return(nil, nil).Once()

	b := newTestBot(t, mocks.NewAPI(t), subs)

	assert.Equal(t,
		"Your searches:\n- bike (any price)\n- iphone (min S$100.00, max S$500.00, excluding case)",
		b.listReply(t.Context(), "42", ""),
	)
	assert.Contains(t, b.listReply(t.Context(), "7", ""), "not watching anything")
}

func TestRecentReply(t *testing.T) {
	t.Parallel()

	subs := mocks.NewSubscriptions(t)
	subs.On("List", mock.Anything, "42").Return([]models.MonitoredSearch{{OwnerID: "42", SearchTerm: "iphone 13"}}, nil)
	subs.On("Snapshot", mock.Anything, "iphone 13").Return(testListings(), nil).Once()
	subs.On("Snapshot", mock.Anything, "iphone").Return(testListings(), nil).Once()

	b := newTestBot(t, mocks.NewAPI(t), subs)

	reply := b.recentReply(t.Context(), "42", "iPhone 13")
	assert.Contains(t, reply, `Newest listings for "iphone 13":`)
	assert.Contains(t, reply, "1. iPhone 13\nS$900.00 · 30 seconds ago\nhttps://www.carousell.sg/p/a/")
	assert.NotContains(t, reply, "2. ")

	reply = b.recentReply(t.Context(), "42", "iphone 2")
	assert.Contains(t, reply, "2. iPhone 12")
	assert.NotContains(t, reply, "3. ")

	assert.Equal(t, usageRecent, b.recentReply(t.Context(), "42", ""))
}

func TestCheapestReply(t *testing.T) {
	t.Parallel()

	subs := mocks.NewSubscriptions(t)
	subs.On("List", mock.Anything, "42").Return(nil, nil)
	subs.On("Snapshot", mock.Anything, "iphone").Return(testListings(), nil).Once()

	reply := newTestBot(t, mocks.NewAPI(t), subs).cheapestReply(t.Context(), "42", "iphone 3")
	assert.Contains(t, reply, "1. iPhone case\nFREE · 3 days ago · bumped")
	assert.Contains(t, reply, "2. iPhone 11")
	assert.Contains(t, reply, "3. iPhone 12")
	assert.NotContains(t, reply, "iPhone 13")
}

func TestRangeReply(t *testing.T) {
	t.Parallel()

	subs := mocks.NewSubscriptions(t)
	subs.On("Snapshot", mock.Anything, "iphone").Return(testListings(), nil).Once()
	subs.On("Snapshot", mock.Anything, "lamp").Return([]models.Listing{}, nil).Once()
	subs.On("Snapshot", mock.Anything, "bike").Return(nil, assert.AnError).Once()

	b := newTestBot(t, mocks.NewAPI(t), subs)

	reply := b.rangeReply(t.Context(), "42", "iPhone 300 450")
	assert.Contains(t, reply, `Listings for "iphone" between S$300.00 and S$450.00:`)
	assert.Contains(t, reply, "iPhone 12")
	assert.Contains(t, reply, "iPhone 11")
	assert.NotContains(t, reply, "iPhone 13")

	assert.Contains(t, b.rangeReply(t.Context(), "42", "lamp 1 2"), "No listings.")
	assert.Equal(t, replyFailure, b.rangeReply(t.Context(), "42", "bike 1 2"))
	assert.Equal(t, usageRange, b.rangeReply(t.Context(), "42", "bike"))
}

func TestRangeReply_LargeSnapshot(t *testing.T) {
	t.Parallel()

	listings := make([]models.Listing, 0, 48)
	for i := range 48 {
		listings = append(listings, models.Listing{
			ListingURL: fmt.Sprintf("/p/apple-iphone-13-pro-max-256gb-sierra-blue-excellent-condition-%d/", 1000000000+i),
			Title:      fmt.Sprintf("Apple iPhone 13 Pro Max 256GB Sierra Blue, excellent condition, with box #%d", i),
			Price:      float64(500 + i),
			Age:        "2 hours",
			AgeHours:   2,
		})
	}

	subs := mocks.NewSubscriptions(t)
	subs.On("Snapshot", mock.Anything, "iphone").Return(listings, nil).Once()

	reply := newTestBot(t, mocks.NewAPI(t), subs).rangeReply(t.Context(), "42", "iphone 0 1000")

	assert.LessOrEqual(t, messageLen(reply), maxMessageLen)
	assert.Contains(t, reply, "1. Apple iPhone 13")
	assert.NotContains(t, reply, fmt.Sprintf("\n%d. ", maxListCount+1))
	assert.Contains(t, reply, "more.")
}

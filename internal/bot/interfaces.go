package bot

import (
	"context"

	"gopkg.in/telebot.v4"

	"github.com/Houeta/deal-watch/internal/models"
)

type API interface {
	// Handle lets you set the handler for some command name or one of the supported endpoints. It also applies middleware if such passed to the function.
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
	// Start brings bot into motion by consuming incoming updates (see Bot.Updates channel).
	Start()
	// Stop gracefully shuts the poller down.
	Stop()

	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Subscriptions is the registry front-end the commands operate on.
type Subscriptions interface {
	Add(ctx context.Context, search models.MonitoredSearch) (models.MonitoredSearch, error)
	Remove(ctx context.Context, ownerID, term string) error
	List(ctx context.Context, ownerID string) ([]models.MonitoredSearch, error)
	Snapshot(ctx context.Context, term string) ([]models.Listing, error)
}

// Package stream publishes push obligations to a Redis stream for external consumers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/redis/go-redis/v9"

	"github.com/Houeta/deal-watch/internal/delivery"
	"github.com/Houeta/deal-watch/internal/models"
)

// payloadField is the stream entry field holding the JSON document.
const payloadField = "obligation"

// Publisher implements delivery.Pusher using XADD.
type Publisher struct {
	log     *slog.Logger
	client  *redis.Client
	stream  string
	baseURL *url.URL
}

var _ delivery.Pusher = (*Publisher)(nil)

// payload is the published document.
type payload struct {
	OwnerID       string   `json:"owner_id"`
	SearchTerm    string   `json:"search_term"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	StrickenPrice *float64 `json:"stricken_price"`
	Age           string   `json:"age"`
	IsBumped      bool     `json:"is_bumped"`
	ListingURL    string   `json:"listing_url"`
	SellerURL     string   `json:"seller_url"`
}

// NewPublisher creates a Redis publisher. Relative listing links are resolved against baseURL.
func NewPublisher(log *slog.Logger, addr string, db int, stream, baseURL string) (*Publisher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &Publisher{log: log, client: client, stream: stream, baseURL: base}, nil
}

// Ping checks that Redis is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Push appends the obligation to the stream.
func (p *Publisher) Push(ctx context.Context, ob models.Obligation) error {
	const opn = "delivery.stream.Push"

	data, err := json.Marshal(p.newPayload(ob))
	if err != nil {
		return fmt.Errorf("%s: failed to encode obligation: %w", opn, err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{payloadField: string(data)},
	}).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}
	p.log.DebugContext(ctx, "Obligation published", "op", opn, "stream", p.stream, "id", id)

	return nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

func (p *Publisher) newPayload(ob models.Obligation) payload {
	return payload{
		OwnerID:       ob.OwnerID,
		SearchTerm:    ob.SearchTerm,
		Title:         ob.Listing.Title,
		Price:         ob.Listing.Price,
		StrickenPrice: ob.Listing.StrickenPrice,
		Age:           ob.Listing.Age,
		IsBumped:      ob.Listing.IsBumped,
		ListingURL:    p.absolute(ob.Listing.ListingURL),
		SellerURL:     p.absolute(ob.Listing.SellerURL),
	}
}

func (p *Publisher) absolute(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return p.baseURL.ResolveReference(u).String()
}

// Package delivery defines the sink that receives push obligations.
package delivery

import (
	"context"

	"github.com/Houeta/deal-watch/internal/models"
)

// Pusher hands one obligation to its owner. Delivery is attempted once and never retried.
type Pusher interface {
	Push(ctx context.Context, obligation models.Obligation) error
}

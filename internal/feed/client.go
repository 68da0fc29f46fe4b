package feed

import (
	"context"

	"pricelens/internal/model"
)

// Client defines the standard interface for competitor price feed clients.
type Client interface {
	GetName() string
	StartStream(ctx context.Context, quoteChan chan<- model.CompetitorQuote) error
}

package feed

import (
	"fmt"
	"log/slog"

	"pricelens/internal/config"
)

// NewClient creates a feed client for the named feed configuration.
func NewClient(name string, logger *slog.Logger, cfg config.FeedConfig) (Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed %s: url is not configured", name)
	}
	return NewWebsocketClient(name, cfg.URL, logger), nil
}

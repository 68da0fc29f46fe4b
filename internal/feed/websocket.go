package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"pricelens/internal/model"
)

// WebsocketClient streams competitor price quotes from a channel
// integration's websocket endpoint. Messages are JSON objects:
// {"sku": "...", "channel": "...", "price": 1.45}.
type WebsocketClient struct {
	name   string
	url    string
	logger *slog.Logger
}

// NewWebsocketClient creates a new WebsocketClient.
func NewWebsocketClient(name, url string, logger *slog.Logger) *WebsocketClient {
	return &WebsocketClient{name: name, url: url, logger: logger}
}

func (w *WebsocketClient) GetName() string {
	return w.name
}

type quoteMessage struct {
	SKU     string  `json:"sku"`
	Channel string  `json:"channel"`
	Price   float64 `json:"price"`
}

// StartStream connects to the feed endpoint and streams competitor quotes
// until the context is cancelled, reconnecting with exponential backoff.
func (w *WebsocketClient) StartStream(ctx context.Context, quoteChan chan<- model.CompetitorQuote) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed: context cancelled, shutting down", "feed", w.name)
			return nil
		default:
			w.logger.Info("feed: connecting", "feed", w.name, "url", w.url, "backoff", backoff)
			c, _, err := websocket.DefaultDialer.Dial(w.url, nil)
			if err != nil {
				w.logger.Error("feed: connection failed", "feed", w.name, "error", err)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoff):
					backoff *= 2
					if backoff > 16*time.Second {
						backoff = 16 * time.Second
					}
				}
				continue
			}

			// Reset backoff on successful connection
			backoff = time.Second
			w.logger.Info("feed: connected", "feed", w.name)

			w.readQuotes(ctx, c, quoteChan)
			if ctx.Err() != nil {
				return nil
			}
			// Read loop ended on error; reconnect.
		}
	}
}

func (w *WebsocketClient) readQuotes(ctx context.Context, c *websocket.Conn, quoteChan chan<- model.CompetitorQuote) {
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed: context cancelled, closing connection", "feed", w.name)
			return
		default:
			_, message, err := c.ReadMessage()
			if err != nil {
				w.logger.Error("feed: failed to read message", "feed", w.name, "error", err)
				return
			}

			var msg quoteMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				w.logger.Warn("feed: failed to parse message", "feed", w.name, "error", err)
				continue
			}
			if msg.SKU == "" || msg.Price <= 0 {
				w.logger.Warn("feed: dropping malformed quote", "feed", w.name, "sku", msg.SKU, "price", msg.Price)
				continue
			}

			quote := model.CompetitorQuote{
				Feed:    w.name,
				SKU:     msg.SKU,
				Channel: msg.Channel,
				Price:   msg.Price,
			}

			select {
			case quoteChan <- quote:
				w.logger.Debug("feed: sent quote", "feed", w.name, "sku", quote.SKU, "price", quote.Price)
			case <-ctx.Done():
				w.logger.Info("feed: context cancelled while sending quote", "feed", w.name)
				return
			}
		}
	}
}

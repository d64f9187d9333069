package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/domain"
)

// reconnectDelay is the pause between reconnect attempts after a drop.
const reconnectDelay = 2 * time.Second

// DepthFeed subscribes to the gateway's depth channel for a single market
// and keeps a DepthCache updated with every snapshot the gateway pushes.
// It reconnects on disconnect until its context is cancelled.
type DepthFeed struct {
	wsURL     string
	market    domain.AccountRef
	cache     *DepthCache
	logger    *slog.Logger
	closeOnce sync.Once
	done      chan struct{}
}

// NewDepthFeed creates a feed that will populate cache with depth snapshots
// for the given market.
func NewDepthFeed(wsURL string, market domain.AccountRef, cache *DepthCache, logger *slog.Logger) *DepthFeed {
	return &DepthFeed{
		wsURL:  wsURL,
		market: market,
		cache:  cache,
		logger: logger.With(slog.String("component", "depth_feed")),
		done:   make(chan struct{}),
	}
}

// Run connects, subscribes, and consumes depth messages until ctx is
// cancelled or Close is called. Reconnects with a fixed delay on failure.
func (f *DepthFeed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			f.logger.Warn("depth feed disconnected, reconnecting",
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

// Close stops the feed.
func (f *DepthFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *DepthFeed) runConnection(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, f.wsURL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.wsURL, err)
	}
	defer conn.Close()

	sub := subscribeRequest{Op: "subscribe", Channel: "depth", Market: f.market.String()}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	f.logger.Info("depth feed subscribed", slog.String("market", f.market.String()))

	// Unblock ReadMessage when the context ends. connDone reaps the watcher
	// when this connection dies on its own, so reconnects do not pile up
	// parked goroutines.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-ctx.Done():
		case <-f.done:
		case <-connDone:
		}
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		snap, ok, err := ParseDepthMessage(data)
		if err != nil {
			f.logger.Warn("bad depth message", slog.String("error", err.Error()))
			continue
		}
		if !ok {
			continue
		}
		f.cache.Put(snap, time.Now())
	}
}

// subscribeRequest is the gateway subscription frame.
type subscribeRequest struct {
	Op      string `json:"op"`
	Channel string `json:"channel"`
	Market  string `json:"market"`
}

// depthMessage is a depth-channel frame from the gateway.
type depthMessage struct {
	Channel   string      `json:"channel"`
	Market    string      `json:"market"`
	Side      string      `json:"side"`
	Levels    [][2]string `json:"levels"` // [price, size] decimal strings
	Timestamp int64       `json:"timestamp"`
}

// ParseDepthMessage decodes a WebSocket frame. The second return is false
// for frames on other channels (acks, heartbeats); an error means a depth
// frame that failed to decode.
func ParseDepthMessage(data []byte) (domain.DepthSnapshot, bool, error) {
	var msg depthMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.DepthSnapshot{}, false, fmt.Errorf("decode frame: %w", err)
	}
	if msg.Channel != "depth" {
		return domain.DepthSnapshot{}, false, nil
	}

	side := domain.BookSide(msg.Side)
	if side != domain.SideBids && side != domain.SideAsks {
		return domain.DepthSnapshot{}, false, fmt.Errorf("unknown side %q", msg.Side)
	}

	levels := make([]domain.PriceLevel, 0, len(msg.Levels))
	for i, raw := range msg.Levels {
		price, err := decimal.NewFromString(raw[0])
		if err != nil {
			return domain.DepthSnapshot{}, false, fmt.Errorf("level %d: bad price %q: %w", i, raw[0], err)
		}
		size, err := decimal.NewFromString(raw[1])
		if err != nil {
			return domain.DepthSnapshot{}, false, fmt.Errorf("level %d: bad size %q: %w", i, raw[1], err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}

	return domain.DepthSnapshot{
		Market:    domain.AccountRef(msg.Market),
		Side:      side,
		Levels:    levels,
		Timestamp: time.UnixMilli(msg.Timestamp),
	}, true, nil
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/openbookhq/flipper/internal/crypto"
	"github.com/openbookhq/flipper/internal/domain"
	"github.com/openbookhq/flipper/internal/exchange"
	"github.com/openbookhq/flipper/internal/feed"
	"github.com/openbookhq/flipper/internal/trader"
)

// RunMode starts the trading loop, optionally fed by the WebSocket depth
// stream, and blocks until the context is cancelled.
func (a *App) RunMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting run mode")

	g, ctx := errgroup.WithContext(ctx)

	client := deps.Exchange
	if deps.DepthCache != nil {
		depthFeed := feed.NewDepthFeed(
			a.cfg.Gateway.WsURL,
			domain.AccountRef(a.cfg.Market.Address),
			deps.DepthCache,
			a.logger,
		)
		g.Go(func() error {
			defer depthFeed.Close()
			return depthFeed.Run(ctx)
		})
		client = feed.NewCachedDepthClient(client, deps.DepthCache, a.cfg.Feed.MaxStaleness.Duration)
	}

	t := trader.New(client, traderConfig(a.cfg, deps.Keypair.Address()), nil, deps.Notifier, a.logger)
	g.Go(func() error {
		return t.Run(ctx)
	})

	return g.Wait()
}

// MonitorMode periodically logs balances and top-of-book without placing
// any orders.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	cfg := traderConfig(a.cfg, deps.Keypair.Address())
	clock := trader.NewRealClock()
	for {
		a.logMarketState(ctx, deps.Exchange, cfg)
		if err := clock.Sleep(ctx, cfg.PostDecisionPause); err != nil {
			return err
		}
	}
}

// logMarketState queries and logs one snapshot of balances and best
// bid/ask. Failures are logged and skipped; monitoring shares the trading
// loop's no-fatal-errors contract.
func (a *App) logMarketState(ctx context.Context, client exchange.Client, cfg trader.Config) {
	base, err := client.GetBalance(ctx, cfg.Market.BaseAccount, cfg.Market.BaseDecimals)
	if err != nil {
		a.logger.WarnContext(ctx, "query base balance failed", slog.String("error", err.Error()))
		return
	}
	quote, err := client.GetBalance(ctx, cfg.Market.QuoteAccount, cfg.Market.QuoteDecimals)
	if err != nil {
		a.logger.WarnContext(ctx, "query quote balance failed", slog.String("error", err.Error()))
		return
	}

	attrs := []any{
		slog.String("base_balance", base.String()),
		slog.String("quote_balance", quote.String()),
	}
	if bids, err := client.GetDepth(ctx, domain.SideBids, 1); err == nil {
		if best, ok := bids.Best(); ok {
			attrs = append(attrs, slog.String("best_bid", best.Price.String()))
		}
	}
	if asks, err := client.GetDepth(ctx, domain.SideAsks, 1); err == nil {
		if best, ok := asks.Best(); ok {
			attrs = append(attrs, slog.String("best_ask", best.Price.String()))
		}
	}
	a.logger.InfoContext(ctx, "market state", attrs...)
}

// CancelMode cancels all resting orders and exits.
func (a *App) CancelMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting cancel mode")

	t := trader.New(deps.Exchange, traderConfig(a.cfg, deps.Keypair.Address()), nil, deps.Notifier, a.logger)
	cancelled, err := t.CancelAll(ctx)
	if err != nil {
		return fmt.Errorf("cancel all (cancelled %d): %w", cancelled, err)
	}
	a.logger.InfoContext(ctx, "cancel complete", slog.Int("cancelled", cancelled))
	return nil
}

// SettleMode performs one settlement pass and exits.
func (a *App) SettleMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting settle mode")

	t := trader.New(deps.Exchange, traderConfig(a.cfg, deps.Keypair.Address()), nil, deps.Notifier, a.logger)
	if err := t.SettleOnce(ctx); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	a.logger.InfoContext(ctx, "settlement complete")
	return nil
}

// EncryptKeyMode encrypts the configured raw owner key with the configured
// password and writes the blob to the encrypted key path.
func (a *App) EncryptKeyMode(ctx context.Context) error {
	blob, err := crypto.EncryptKey(a.cfg.Owner.PrivateKey, a.cfg.Owner.KeyPassword)
	if err != nil {
		return fmt.Errorf("encrypt key: %w", err)
	}
	if err := os.WriteFile(a.cfg.Owner.EncryptedKeyPath, blob, 0o600); err != nil {
		return fmt.Errorf("write encrypted key file: %w", err)
	}
	a.logger.InfoContext(ctx, "encrypted key written",
		slog.String("path", a.cfg.Owner.EncryptedKeyPath),
	)
	return nil
}

// Package trader implements the order-lifecycle state machine: the polling
// loop that inspects balances and the order book each tick, alternates
// between placing a buy and a sell, and settles completed trade proceeds.
package trader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/domain"
	"github.com/openbookhq/flipper/internal/exchange"
	"github.com/openbookhq/flipper/internal/sizer"
)

// Notifier is the slice of the notification system the trader uses.
// Satisfied by *notify.Notifier; tests use a no-op.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config carries the immutable parameters of the trading loop.
type Config struct {
	Owner  domain.AccountRef
	Market domain.Market

	// MinBaseBalance is the smallest base holding that triggers a sell.
	MinBaseBalance decimal.Decimal
	// MinQuoteBalance is the smallest quote holding that triggers a buy.
	MinQuoteBalance decimal.Decimal

	// DepthLimit is how many levels of the book each decision inspects.
	DepthLimit int
	// PostDecisionPause separates the buy/sell decision from settlement.
	PostDecisionPause time.Duration
	// PostSettlePause separates settlement from the next tick.
	PostSettlePause time.Duration

	OrderType domain.OrderType
}

// Trader drives the buy/sell/settle cycle against a venue. A single
// goroutine runs the loop; no adapter call is ever in flight concurrently
// with another.
type Trader struct {
	client   exchange.Client
	cfg      Config
	clock    Clock
	notifier Notifier
	logger   *slog.Logger
}

// New creates a Trader. clock and notifier may be nil, in which case the
// system clock and a no-op notifier are used.
func New(client exchange.Client, cfg Config, clock Clock, notifier Notifier, logger *slog.Logger) *Trader {
	if clock == nil {
		clock = NewRealClock()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Trader{
		client:   client,
		cfg:      cfg,
		clock:    clock,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "trader")),
	}
}

// Run executes the trading loop until ctx is cancelled. Any error raised
// inside a tick is logged and the loop proceeds after the standard pacing
// delay; no single-tick failure terminates the agent. Position state
// mutations that happened before a mid-tick failure are preserved.
func (t *Trader) Run(ctx context.Context) error {
	t.logger.InfoContext(ctx, "trading loop started",
		slog.String("market", t.cfg.Market.Address.String()),
		slog.String("base", t.cfg.Market.BaseSymbol),
		slog.String("quote", t.cfg.Market.QuoteSymbol),
	)
	defer t.logger.Info("trading loop stopped")

	state := domain.PositionState{}
	for {
		next, err := t.RunTick(ctx, state)
		state = next
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			t.logger.WarnContext(ctx, "tick failed",
				slog.String("kind", domain.ErrorKind(err)),
				slog.String("state", state.String()),
				slog.String("error", err.Error()),
			)
			_ = t.notifier.Notify(ctx, "error", "Tick failed", err.Error())
			// The fixed tick interval doubles as the retry cadence.
			if err := t.clock.Sleep(ctx, t.cfg.PostDecisionPause); err != nil {
				return err
			}
		}
	}
}

// RunTick executes one full tick: decision, pacing pause, settlement pass,
// second pause. It returns the state as of the last confirmed action, so a
// mid-tick failure never rolls back or invents a transition.
func (t *Trader) RunTick(ctx context.Context, state domain.PositionState) (domain.PositionState, error) {
	state, err := t.decide(ctx, state)
	if err != nil {
		return state, err
	}

	if err := t.clock.Sleep(ctx, t.cfg.PostDecisionPause); err != nil {
		return state, err
	}

	state, err = t.settlePass(ctx, state)
	if err != nil {
		return state, err
	}

	if err := t.clock.Sleep(ctx, t.cfg.PostSettlePause); err != nil {
		return state, err
	}
	return state, nil
}

// decide runs the buy-else-sell branch of the tick. The two branches are
// mutually exclusive: once the buy path is taken (or skipped because a buy
// is already open and the quote balance qualifies), the sell evaluation
// waits for the next tick.
func (t *Trader) decide(ctx context.Context, state domain.PositionState) (domain.PositionState, error) {
	quote, err := t.client.GetBalance(ctx, t.cfg.Market.QuoteAccount, t.cfg.Market.QuoteDecimals)
	if err != nil {
		return state, fmt.Errorf("query quote balance: %w", err)
	}

	if !state.HasOpenBuy && quote.GreaterThanOrEqual(t.cfg.MinQuoteBalance) {
		t.logger.DebugContext(ctx, "evaluating buy",
			slog.String("quote_balance", quote.String()),
		)
		return t.tryBuy(ctx, state, quote)
	}

	base, err := t.client.GetBalance(ctx, t.cfg.Market.BaseAccount, t.cfg.Market.BaseDecimals)
	if err != nil {
		return state, fmt.Errorf("query base balance: %w", err)
	}

	if !state.HasOpenSell && base.GreaterThanOrEqual(t.cfg.MinBaseBalance) {
		t.logger.DebugContext(ctx, "evaluating sell",
			slog.String("base_balance", base.String()),
		)
		return t.trySell(ctx, state, base)
	}

	return state, nil
}

// tryBuy walks the ask side for a level deep enough to absorb the whole
// quote balance and submits a limit buy against it.
func (t *Trader) tryBuy(ctx context.Context, state domain.PositionState, quoteBalance decimal.Decimal) (domain.PositionState, error) {
	asks, err := t.client.GetDepth(ctx, domain.SideAsks, t.cfg.DepthLimit)
	if err != nil {
		return state, fmt.Errorf("fetch asks: %w", err)
	}

	sel, ok := sizer.SelectExecutableLevel(asks, quoteBalance, domain.OrderSideBuy)
	if !ok {
		t.logger.DebugContext(ctx, "no executable ask level, idling",
			slog.Int("levels", len(asks.Levels)),
		)
		return state, nil
	}

	receipt, err := t.placeOrder(ctx, domain.OrderRequest{
		ClientID: uuid.NewString(),
		Side:     domain.OrderSideBuy,
		Price:    sel.Level.Price,
		Size:     sel.Amount,
		Payer:    t.cfg.Market.QuoteAccount,
		Type:     t.cfg.OrderType,
	})
	if err != nil {
		return state, err
	}

	t.logger.InfoContext(ctx, "buy order placed",
		slog.String("order_id", receipt.OrderID),
		slog.String("price", sel.Level.Price.String()),
		slog.String("size", sel.Amount.String()),
		slog.String("quote_balance", quoteBalance.String()),
	)
	_ = t.notifier.Notify(ctx, "order_placed", "Buy order placed",
		fmt.Sprintf("%s %s @ %s %s", sel.Amount, t.cfg.Market.BaseSymbol, sel.Level.Price, t.cfg.Market.QuoteSymbol))

	return state.WithBuyPlaced(), nil
}

// trySell walks the bid side for a level large enough to absorb the whole
// base balance and submits a limit sell against it.
func (t *Trader) trySell(ctx context.Context, state domain.PositionState, baseBalance decimal.Decimal) (domain.PositionState, error) {
	bids, err := t.client.GetDepth(ctx, domain.SideBids, t.cfg.DepthLimit)
	if err != nil {
		return state, fmt.Errorf("fetch bids: %w", err)
	}

	sel, ok := sizer.SelectExecutableLevel(bids, baseBalance, domain.OrderSideSell)
	if !ok {
		t.logger.DebugContext(ctx, "no executable bid level, idling",
			slog.Int("levels", len(bids.Levels)),
		)
		return state, nil
	}

	receipt, err := t.placeOrder(ctx, domain.OrderRequest{
		ClientID: uuid.NewString(),
		Side:     domain.OrderSideSell,
		Price:    sel.Level.Price,
		Size:     sel.Amount,
		Payer:    t.cfg.Market.BaseAccount,
		Type:     t.cfg.OrderType,
	})
	if err != nil {
		return state, err
	}

	t.logger.InfoContext(ctx, "sell order placed",
		slog.String("order_id", receipt.OrderID),
		slog.String("price", sel.Level.Price.String()),
		slog.String("size", sel.Amount.String()),
		slog.String("base_balance", baseBalance.String()),
	)
	_ = t.notifier.Notify(ctx, "order_placed", "Sell order placed",
		fmt.Sprintf("%s %s @ %s %s", sel.Amount, t.cfg.Market.BaseSymbol, sel.Level.Price, t.cfg.Market.QuoteSymbol))

	return state.WithSellPlaced(), nil
}

func (t *Trader) placeOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderReceipt, error) {
	receipt, err := t.client.PlaceOrder(ctx, req)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("place %s order (price=%s size=%s): %w",
			req.Side, req.Price, req.Size, err)
	}
	return receipt, nil
}

// noopNotifier drops all notifications.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) error { return nil }

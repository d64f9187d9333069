package trader

import (
	"context"
	"fmt"
	"log/slog"
)

// CancelAll cancels every resting order the owner has on the market. It is
// an operator utility, invoked outside the main loop. Cancellation keeps
// going past individual failures; the first error is returned after the
// sweep along with the number of successful cancels.
func (t *Trader) CancelAll(ctx context.Context) (int, error) {
	orders, err := t.client.ListOpenOrders(ctx, t.cfg.Owner)
	if err != nil {
		return 0, fmt.Errorf("list open orders: %w", err)
	}
	if len(orders) == 0 {
		t.logger.InfoContext(ctx, "no open orders to cancel")
		return 0, nil
	}

	cancelled := 0
	var firstErr error
	for _, order := range orders {
		if err := t.client.CancelOrder(ctx, t.cfg.Owner, order.OrderID); err != nil {
			t.logger.WarnContext(ctx, "cancel failed",
				slog.String("order_id", order.OrderID),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("cancel order %s: %w", order.OrderID, err)
			}
			continue
		}
		cancelled++
		t.logger.InfoContext(ctx, "order cancelled",
			slog.String("order_id", order.OrderID),
			slog.String("side", string(order.Side)),
			slog.String("price", order.Price.String()),
			slog.String("size", order.Size.String()),
		)
	}
	return cancelled, firstErr
}

package trader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openbookhq/flipper/internal/domain"
)

// settlePass routes matched proceeds from the owner's open-orders accounts
// back to the base and quote token accounts. It runs once per tick and is a
// no-op while FundsSettled is set; a subsequent buy or sell resets the flag.
//
// Every open-orders account is settled, not just the first one enumerated,
// and the flag flips only after the whole pass succeeded. A failure midway
// leaves the flag clear so the remaining accounts are retried next tick
// (settlement is idempotent on the venue side).
func (t *Trader) settlePass(ctx context.Context, state domain.PositionState) (domain.PositionState, error) {
	if state.FundsSettled {
		return state, nil
	}

	accounts, err := t.client.ListOpenOrdersAccounts(ctx, t.cfg.Owner)
	if err != nil {
		return state, fmt.Errorf("list open-orders accounts: %w", err)
	}
	if len(accounts) == 0 {
		return state, nil
	}

	for _, acct := range accounts {
		if err := t.client.SettleFunds(ctx, t.cfg.Owner, acct, t.cfg.Market.BaseAccount, t.cfg.Market.QuoteAccount); err != nil {
			return state, fmt.Errorf("settle %s: %w", acct, err)
		}
		t.logger.InfoContext(ctx, "funds settled",
			slog.String("open_orders_account", acct.String()),
		)
	}

	_ = t.notifier.Notify(ctx, "funds_settled", "Funds settled",
		fmt.Sprintf("settled %d open-orders account(s)", len(accounts)))
	return state.WithFundsSettled(), nil
}

// SettleOnce performs a single settlement pass regardless of position
// state. Used by the operator settle mode.
func (t *Trader) SettleOnce(ctx context.Context) error {
	_, err := t.settlePass(ctx, domain.PositionState{})
	return err
}

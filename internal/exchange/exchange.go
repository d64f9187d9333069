// Package exchange defines the venue adapter contract the trading core
// depends on. Implementations live in subpackages (gateway); tests use
// in-memory fakes.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/domain"
)

// Client is the exchange connectivity boundary. All calls are blocking; the
// trading loop never has more than one in flight. Failures are reported via
// the domain error taxonomy (ErrConnectivity, ErrOrderRejected,
// ErrSettlement) wrapped with call context.
type Client interface {
	// GetBalance returns the spendable balance of a token account in
	// human-readable units, scaled by the token's decimals.
	GetBalance(ctx context.Context, account domain.AccountRef, decimals int) (decimal.Decimal, error)

	// GetDepth returns an L2 snapshot of one side of the book, best price
	// first, truncated to limit levels.
	GetDepth(ctx context.Context, side domain.BookSide, limit int) (domain.DepthSnapshot, error)

	// PlaceOrder submits a limit order and returns the venue receipt.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderReceipt, error)

	// ListOpenOrders returns the owner's resting orders on the market.
	ListOpenOrders(ctx context.Context, owner domain.AccountRef) ([]domain.OpenOrder, error)

	// CancelOrder cancels a single resting order by ID.
	CancelOrder(ctx context.Context, owner domain.AccountRef, orderID string) error

	// ListOpenOrdersAccounts enumerates the owner's open-orders accounts on
	// the market (the on-venue escrow accounts holding trade proceeds).
	ListOpenOrdersAccounts(ctx context.Context, owner domain.AccountRef) ([]domain.AccountRef, error)

	// SettleFunds moves matched proceeds from an open-orders account into
	// the owner's base and quote token accounts.
	SettleFunds(ctx context.Context, owner, openOrders, baseDest, quoteDest domain.AccountRef) error
}

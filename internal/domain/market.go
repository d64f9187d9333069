// Package domain holds the core types shared across the bot: market and
// account identifiers, orderbook snapshots, orders, and the position state
// the trading loop threads through each tick.
package domain

// AccountRef identifies an on-venue account (an owner address, a token
// account, or an open-orders account) by its address string.
type AccountRef string

// String returns the raw address.
func (a AccountRef) String() string { return string(a) }

// Market describes the single market the agent trades and the owner's
// token accounts on both legs. BaseAccount receives base-token proceeds on
// settlement and pays for sells; QuoteAccount is the mirror for the quote
// side.
type Market struct {
	Address       AccountRef
	BaseSymbol    string
	QuoteSymbol   string
	BaseAccount   AccountRef
	QuoteAccount  AccountRef
	BaseDecimals  int
	QuoteDecimals int
}

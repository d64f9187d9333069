package domain

import "fmt"

// PositionState is the agent's belief about the current point in the
// buy/sell/settle cycle. It is a value type: transitions return a new state
// rather than mutating in place, so the trading loop can thread it through
// each tick and tests can assert on transitions in isolation.
//
// By construction HasOpenBuy and HasOpenSell are never both true: each
// transition overwrites both flags.
type PositionState struct {
	HasOpenBuy   bool
	HasOpenSell  bool
	FundsSettled bool
}

// WithBuyPlaced returns the state after a confirmed buy submission.
func (s PositionState) WithBuyPlaced() PositionState {
	return PositionState{HasOpenBuy: true, HasOpenSell: false, FundsSettled: false}
}

// WithSellPlaced returns the state after a confirmed sell submission.
func (s PositionState) WithSellPlaced() PositionState {
	return PositionState{HasOpenBuy: false, HasOpenSell: true, FundsSettled: false}
}

// WithFundsSettled returns the state after a completed settlement pass.
// The open-order flags are preserved; only the settle flag flips.
func (s PositionState) WithFundsSettled() PositionState {
	s.FundsSettled = true
	return s
}

// String renders the state for logs.
func (s PositionState) String() string {
	return fmt.Sprintf("buy=%t sell=%t settled=%t", s.HasOpenBuy, s.HasOpenSell, s.FundsSettled)
}

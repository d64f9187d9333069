// Package sizer selects the order-book level an order can execute against
// in full, given the balance available to trade.
package sizer

import (
	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/domain"
)

// Selection is the outcome of a successful level search: the level to trade
// against and the size to submit at that level's price.
type Selection struct {
	Level  domain.PriceLevel
	Amount decimal.Decimal
}

// SelectExecutableLevel walks snap from the best price outward and picks the
// first level deep enough to absorb the whole trade, so the order fills
// against a single level and no partial-fill tracking is needed.
//
// Buy mode (snap is the ask side, available is the quote balance): the first
// level whose notional price*size exceeds available is chosen, and the trade
// amount is floor(available/price).
//
// Sell mode (snap is the bid side, available is the base balance): the first
// level whose size exceeds available is chosen, and the trade amount is the
// entire base balance.
//
// The second return is false when no level in the snapshot qualifies, the
// snapshot is empty, or available is not positive; the caller idles that
// side for the tick.
func SelectExecutableLevel(snap domain.DepthSnapshot, available decimal.Decimal, side domain.OrderSide) (Selection, bool) {
	if snap.Empty() || available.Sign() <= 0 {
		return Selection{}, false
	}

	for _, level := range snap.Levels {
		switch side {
		case domain.OrderSideBuy:
			if level.Notional().GreaterThan(available) {
				// QuoRem gives the exact integer quotient; Div would round
				// at its fixed precision before the floor and can overshoot
				// by one unit the balance cannot pay.
				quotient, _ := available.QuoRem(level.Price, 0)
				return Selection{
					Level:  level,
					Amount: quotient,
				}, true
			}
		case domain.OrderSideSell:
			if level.Size.GreaterThan(available) {
				return Selection{
					Level:  level,
					Amount: available,
				}, true
			}
		}
	}
	return Selection{}, false
}

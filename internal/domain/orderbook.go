package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookSide selects one half of the order book.
type BookSide string

const (
	SideBids BookSide = "bids"
	SideAsks BookSide = "asks"
)

// PriceLevel is a single aggregated price+size entry in an orderbook.
type PriceLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Notional returns price * size, the quote value resting at this level.
func (l PriceLevel) Notional() decimal.Decimal {
	return l.Price.Mul(l.Size)
}

// DepthSnapshot is an L2 view of one side of the book: levels ordered best
// price first, truncated to a bounded depth.
type DepthSnapshot struct {
	Market    AccountRef
	Side      BookSide
	Levels    []PriceLevel
	Timestamp time.Time
}

// Empty reports whether the snapshot carries no levels.
func (s DepthSnapshot) Empty() bool { return len(s.Levels) == 0 }

// Best returns the top-of-book level, if any.
func (s DepthSnapshot) Best() (PriceLevel, bool) {
	if len(s.Levels) == 0 {
		return PriceLevel{}, false
	}
	return s.Levels[0], true
}

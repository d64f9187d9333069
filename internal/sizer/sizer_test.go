package sizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbookhq/flipper/internal/domain"
)

func level(price, size string) domain.PriceLevel {
	return domain.PriceLevel{
		Price: decimal.RequireFromString(price),
		Size:  decimal.RequireFromString(size),
	}
}

func snapshot(side domain.BookSide, levels ...domain.PriceLevel) domain.DepthSnapshot {
	return domain.DepthSnapshot{Market: "mkt", Side: side, Levels: levels}
}

func TestSelectExecutableLevel_BuySkipsShallowLevels(t *testing.T) {
	// First ask level holds only 2*3=6 quote of depth; 25 quote must walk
	// to the second level (4*10=40 > 25).
	asks := snapshot(domain.SideAsks,
		level("3", "2"),
		level("4", "10"),
	)

	sel, ok := SelectExecutableLevel(asks, decimal.RequireFromString("25"), domain.OrderSideBuy)
	require.True(t, ok)
	assert.True(t, sel.Level.Price.Equal(decimal.RequireFromString("4")), "price %s", sel.Level.Price)
	// floor(25/4) = 6
	assert.True(t, sel.Amount.Equal(decimal.RequireFromString("6")), "amount %s", sel.Amount)
}

func TestSelectExecutableLevel_BuyAmountIsFloored(t *testing.T) {
	asks := snapshot(domain.SideAsks, level("3", "100"))

	sel, ok := SelectExecutableLevel(asks, decimal.RequireFromString("10"), domain.OrderSideBuy)
	require.True(t, ok)
	// floor(10/3) = 3, never 3.33.
	assert.True(t, sel.Amount.Equal(decimal.RequireFromString("3")), "amount %s", sel.Amount)
}

func TestSelectExecutableLevel_BuyQuotientJustBelowIntegerFloorsDown(t *testing.T) {
	// 299999999999999999 / 1e17 = 2.99999999999999999. The quotient must be
	// taken exactly: rounding at a fixed precision before the floor would
	// yield 3, one unit more than the balance can pay.
	asks := snapshot(domain.SideAsks, level("100000000000000000", "100"))

	sel, ok := SelectExecutableLevel(asks, decimal.RequireFromString("299999999999999999"), domain.OrderSideBuy)
	require.True(t, ok)
	assert.True(t, sel.Amount.Equal(decimal.NewFromInt(2)), "amount %s", sel.Amount)
	assert.True(t, sel.Level.Price.Mul(sel.Amount).LessThanOrEqual(decimal.RequireFromString("299999999999999999")),
		"cost must never exceed the available balance")
}

func TestSelectExecutableLevel_BuyNotionalEqualDoesNotQualify(t *testing.T) {
	// Strictly-greater comparison: notional exactly equal to the balance is
	// not deep enough.
	asks := snapshot(domain.SideAsks, level("5", "2"))

	_, ok := SelectExecutableLevel(asks, decimal.RequireFromString("10"), domain.OrderSideBuy)
	assert.False(t, ok)
}

func TestSelectExecutableLevel_SellPicksFirstDeepBid(t *testing.T) {
	bids := snapshot(domain.SideBids,
		level("9", "3"),
		level("8", "50"),
	)

	sel, ok := SelectExecutableLevel(bids, decimal.RequireFromString("7"), domain.OrderSideSell)
	require.True(t, ok)
	assert.True(t, sel.Level.Price.Equal(decimal.RequireFromString("8")), "price %s", sel.Level.Price)
	// Sell submits the entire base balance.
	assert.True(t, sel.Amount.Equal(decimal.RequireFromString("7")), "amount %s", sel.Amount)
}

func TestSelectExecutableLevel_SellSizeEqualDoesNotQualify(t *testing.T) {
	bids := snapshot(domain.SideBids, level("9", "7"))

	_, ok := SelectExecutableLevel(bids, decimal.RequireFromString("7"), domain.OrderSideSell)
	assert.False(t, ok)
}

func TestSelectExecutableLevel_NoQualifyingLevel(t *testing.T) {
	tests := []struct {
		name      string
		snap      domain.DepthSnapshot
		available string
		side      domain.OrderSide
	}{
		{
			name:      "empty book buy",
			snap:      snapshot(domain.SideAsks),
			available: "100",
			side:      domain.OrderSideBuy,
		},
		{
			name:      "empty book sell",
			snap:      snapshot(domain.SideBids),
			available: "100",
			side:      domain.OrderSideSell,
		},
		{
			name:      "all ask levels too shallow",
			snap:      snapshot(domain.SideAsks, level("2", "1"), level("3", "1")),
			available: "100",
			side:      domain.OrderSideBuy,
		},
		{
			name:      "all bid levels too small",
			snap:      snapshot(domain.SideBids, level("9", "1"), level("8", "2")),
			available: "100",
			side:      domain.OrderSideSell,
		},
		{
			name:      "zero balance",
			snap:      snapshot(domain.SideAsks, level("2", "100")),
			available: "0",
			side:      domain.OrderSideBuy,
		},
		{
			name:      "negative balance",
			snap:      snapshot(domain.SideBids, level("2", "100")),
			available: "-5",
			side:      domain.OrderSideSell,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, ok := SelectExecutableLevel(tt.snap, decimal.RequireFromString(tt.available), tt.side)
			assert.False(t, ok)
			assert.True(t, sel.Amount.IsZero())
		})
	}
}

func TestSelectExecutableLevel_FractionalPrices(t *testing.T) {
	// Decimal arithmetic must not pick up float drift: 0.1*3 is exactly 0.3.
	asks := snapshot(domain.SideAsks, level("0.1", "3"), level("0.2", "10"))

	sel, ok := SelectExecutableLevel(asks, decimal.RequireFromString("0.3"), domain.OrderSideBuy)
	require.True(t, ok)
	assert.True(t, sel.Level.Price.Equal(decimal.RequireFromString("0.2")))
	// floor(0.3/0.2) = 1
	assert.True(t, sel.Amount.Equal(decimal.NewFromInt(1)), "amount %s", sel.Amount)
}

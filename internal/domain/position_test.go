package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionState_ZeroValueIsIdle(t *testing.T) {
	var s PositionState
	assert.False(t, s.HasOpenBuy)
	assert.False(t, s.HasOpenSell)
	assert.False(t, s.FundsSettled)
}

func TestPositionState_BuyAndSellAreExclusive(t *testing.T) {
	s := PositionState{}.WithBuyPlaced()
	assert.True(t, s.HasOpenBuy)
	assert.False(t, s.HasOpenSell)

	s = s.WithSellPlaced()
	assert.False(t, s.HasOpenBuy)
	assert.True(t, s.HasOpenSell)

	s = s.WithBuyPlaced()
	assert.True(t, s.HasOpenBuy)
	assert.False(t, s.HasOpenSell)
}

func TestPositionState_PlacementClearsSettledFlag(t *testing.T) {
	s := PositionState{}.WithFundsSettled()
	assert.True(t, s.FundsSettled)

	assert.False(t, s.WithBuyPlaced().FundsSettled)
	assert.False(t, s.WithSellPlaced().FundsSettled)
}

func TestPositionState_SettlePreservesOrderFlags(t *testing.T) {
	s := PositionState{}.WithSellPlaced().WithFundsSettled()
	assert.True(t, s.FundsSettled)
	assert.True(t, s.HasOpenSell)
	assert.False(t, s.HasOpenBuy)
}

func TestPositionState_TransitionsAreValueSemantics(t *testing.T) {
	orig := PositionState{}
	_ = orig.WithBuyPlaced()
	assert.False(t, orig.HasOpenBuy, "transition must not mutate the receiver")
}

func TestPositionState_String(t *testing.T) {
	s := PositionState{HasOpenBuy: true, FundsSettled: true}
	assert.Equal(t, "buy=true sell=false settled=true", s.String())
}

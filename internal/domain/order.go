package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType is the venue order type.
type OrderType string

const (
	OrderTypeLimit    OrderType = "limit"
	OrderTypeIOC      OrderType = "ioc"
	OrderTypePostOnly OrderType = "postOnly"
)

// OrderRequest is a single order submission. It is created per decision,
// submitted once, and never retried within the same tick.
type OrderRequest struct {
	ClientID string // caller-assigned idempotency key
	Side     OrderSide
	Price    decimal.Decimal
	Size     decimal.Decimal
	Payer    AccountRef // token account funding the order
	Type     OrderType
}

// OrderReceipt is the venue's acknowledgement of an accepted order.
type OrderReceipt struct {
	OrderID     string
	TxSignature string
	PlacedAt    time.Time
}

// OpenOrder is a resting order owned by the agent, as listed by the venue.
// Used by the operator cancel-all utility.
type OpenOrder struct {
	OrderID string
	Side    OrderSide
	Price   decimal.Decimal
	Size    decimal.Decimal
}

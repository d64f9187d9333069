package gateway

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/domain"
)

// apiBalance is the wire form of GET /v1/accounts/{addr}/balance.
type apiBalance struct {
	Account string `json:"account"`
	Amount  string `json:"amount"` // decimal string, human units
}

// apiLevel is one L2 level; price and size are decimal strings.
type apiLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// apiDepth is the wire form of GET /v1/markets/{market}/depth.
type apiDepth struct {
	Market    string     `json:"market"`
	Side      string     `json:"side"`
	Levels    []apiLevel `json:"levels"`
	Timestamp int64      `json:"timestamp"` // unix milliseconds
}

// toDomain converts the wire snapshot, validating every level.
func (d apiDepth) toDomain() (domain.DepthSnapshot, error) {
	levels := make([]domain.PriceLevel, 0, len(d.Levels))
	for i, l := range d.Levels {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return domain.DepthSnapshot{}, fmt.Errorf("level %d: bad price %q: %w", i, l.Price, err)
		}
		size, err := decimal.NewFromString(l.Size)
		if err != nil {
			return domain.DepthSnapshot{}, fmt.Errorf("level %d: bad size %q: %w", i, l.Size, err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Size: size})
	}
	return domain.DepthSnapshot{
		Market:    domain.AccountRef(d.Market),
		Side:      domain.BookSide(d.Side),
		Levels:    levels,
		Timestamp: time.UnixMilli(d.Timestamp),
	}, nil
}

// apiOrderAck is the wire form of POST /v1/markets/{market}/orders.
type apiOrderAck struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"orderId"`
	TxSignature string `json:"txSignature"`
	ErrorMsg    string `json:"errorMsg"`
}

// apiOpenOrder is one entry of GET /v1/markets/{market}/orders.
type apiOpenOrder struct {
	OrderID string `json:"orderId"`
	Side    string `json:"side"`
	Price   string `json:"price"`
	Size    string `json:"size"`
}

func (o apiOpenOrder) toDomain() (domain.OpenOrder, error) {
	price, err := decimal.NewFromString(o.Price)
	if err != nil {
		return domain.OpenOrder{}, fmt.Errorf("order %s: bad price %q: %w", o.OrderID, o.Price, err)
	}
	size, err := decimal.NewFromString(o.Size)
	if err != nil {
		return domain.OpenOrder{}, fmt.Errorf("order %s: bad size %q: %w", o.OrderID, o.Size, err)
	}
	return domain.OpenOrder{
		OrderID: o.OrderID,
		Side:    domain.OrderSide(o.Side),
		Price:   price,
		Size:    size,
	}, nil
}

// apiOpenOrdersAccounts is the wire form of
// GET /v1/markets/{market}/open-orders-accounts.
type apiOpenOrdersAccounts struct {
	Accounts []string `json:"accounts"`
}

// apiGenericResult is the wire form of mutation endpoints that only report
// success or failure (cancel, settle).
type apiGenericResult struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg"`
}

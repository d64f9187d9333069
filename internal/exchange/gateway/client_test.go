package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbookhq/flipper/internal/crypto"
	"github.com/openbookhq/flipper/internal/domain"
)

const testSeedHex = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func testSigner(t *testing.T) (*crypto.RequestSigner, crypto.Keypair) {
	t.Helper()
	kp, err := crypto.NewKeypairFromHex(testSeedHex)
	require.NoError(t, err)
	return crypto.NewRequestSigner(kp), kp
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	signer, _ := testSigner(t)
	return New(server.URL, "mkt-addr", signer, 5*time.Second)
}

func TestGetBalance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/accounts/quote-acct/balance", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("decimals"))
		w.Write([]byte(`{"account":"quote-acct","amount":"123.456"}`))
	})

	bal, err := client.GetBalance(context.Background(), "quote-acct", 6)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("123.456")), "balance %s", bal)
}

func TestGetBalance_BadAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"account":"quote-acct","amount":"not-a-number"}`))
	})

	_, err := client.GetBalance(context.Background(), "quote-acct", 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad balance amount")
}

func TestGetDepth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/markets/mkt-addr/depth", r.URL.Path)
		assert.Equal(t, "asks", r.URL.Query().Get("side"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"market": "mkt-addr",
			"side": "asks",
			"levels": [{"price":"3.5","size":"100"},{"price":"3.6","size":"200"}],
			"timestamp": 1700000000000
		}`))
	})

	snap, err := client.GetDepth(context.Background(), domain.SideAsks, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.SideAsks, snap.Side)
	require.Len(t, snap.Levels, 2)
	assert.True(t, snap.Levels[0].Price.Equal(decimal.RequireFromString("3.5")))
	assert.True(t, snap.Levels[1].Size.Equal(decimal.RequireFromString("200")))
	assert.Equal(t, time.UnixMilli(1700000000000), snap.Timestamp)
}

func TestPlaceOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/markets/mkt-addr/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"success":true,"orderId":"ord-7","txSignature":"sig-7"}`))
	})

	receipt, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		ClientID: "cid-1",
		Side:     domain.OrderSideBuy,
		Price:    decimal.NewFromInt(4),
		Size:     decimal.NewFromInt(6),
		Payer:    "quote-acct",
		Type:     domain.OrderTypeLimit,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-7", receipt.OrderID)
	assert.Equal(t, "sig-7", receipt.TxSignature)
	assert.False(t, receipt.PlacedAt.IsZero())
}

func TestPlaceOrder_VenueRefusal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":false,"errorMsg":"insufficient funds"}`))
	})

	_, err := client.PlaceOrder(context.Background(), domain.OrderRequest{
		Side:  domain.OrderSideBuy,
		Price: decimal.NewFromInt(4),
		Size:  decimal.NewFromInt(6),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOrderRejected))
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestListOpenOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner-1", r.URL.Query().Get("owner"))
		w.Write([]byte(`[
			{"orderId":"a","side":"buy","price":"4","size":"6"},
			{"orderId":"b","side":"sell","price":"5","size":"7"}
		]`))
	})

	orders, err := client.ListOpenOrders(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "a", orders[0].OrderID)
	assert.Equal(t, domain.OrderSideSell, orders[1].Side)
}

func TestCancelOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/markets/mkt-addr/orders/ord-9", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, client.CancelOrder(context.Background(), "owner-1", "ord-9"))
}

func TestListOpenOrdersAccounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/markets/mkt-addr/open-orders-accounts", r.URL.Path)
		w.Write([]byte(`{"accounts":["oo-1","oo-2"]}`))
	})

	accounts, err := client.ListOpenOrdersAccounts(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.AccountRef{"oo-1", "oo-2"}, accounts)
}

func TestSettleFunds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/markets/mkt-addr/settle", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	})

	err := client.SettleFunds(context.Background(), "owner-1", "oo-1", "base-acct", "quote-acct")
	require.NoError(t, err)
}

func TestSettleFunds_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{
			name:     "venue refusal is a settlement error",
			status:   http.StatusOK,
			body:     `{"success":false,"errorMsg":"nothing to settle"}`,
			sentinel: domain.ErrSettlement,
		},
		{
			name:     "client error is a settlement error",
			status:   http.StatusBadRequest,
			body:     `bad open-orders account`,
			sentinel: domain.ErrSettlement,
		},
		{
			name:     "server error stays a connectivity error",
			status:   http.StatusInternalServerError,
			body:     `upstream timeout`,
			sentinel: domain.ErrConnectivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			err := client.SettleFunds(context.Background(), "owner-1", "oo-1", "base-acct", "quote-acct")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusBadRequest, domain.ErrOrderRejected},
		{http.StatusUnprocessableEntity, domain.ErrOrderRejected},
		{http.StatusInternalServerError, domain.ErrConnectivity},
		{http.StatusBadGateway, domain.ErrConnectivity},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.GetBalance(context.Background(), "quote-acct", 6)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "status %d got %v", tt.status, err)
		})
	}
}

func TestTransportFailureIsConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on
	signer, _ := testSigner(t)
	client := New(server.URL, "mkt-addr", signer, time.Second)

	_, err := client.GetBalance(context.Background(), "quote-acct", 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConnectivity))
}

func TestRequestsAreSigned(t *testing.T) {
	var gotHeaders http.Header
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotPath = r.URL.RequestURI()
		w.Write([]byte(`{"account":"a","amount":"1"}`))
	})

	_, err := client.GetBalance(context.Background(), "quote-acct", 6)
	require.NoError(t, err)

	_, kp := testSigner(t)
	assert.Equal(t, kp.Address().String(), gotHeaders.Get("OB-PUBKEY"))

	ts, err := strconv.ParseInt(gotHeaders.Get("OB-TIMESTAMP"), 10, 64)
	require.NoError(t, err)
	assert.True(t, crypto.Verify(kp.Public(), ts, http.MethodGet, gotPath, "", gotHeaders.Get("OB-SIGNATURE")),
		"signature must verify over timestamp|method|path|body")
	assert.True(t, strings.HasPrefix(gotPath, "/v1/accounts/"))
}

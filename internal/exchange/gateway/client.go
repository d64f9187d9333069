// Package gateway implements the exchange.Client contract against an
// OpenBook-style DEX REST gateway. Private endpoints are authenticated with
// ed25519-signed headers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/crypto"
	"github.com/openbookhq/flipper/internal/domain"
)

// Client is the REST client for the DEX gateway. It handles balance and
// depth queries, order placement and cancellation, and settlement.
type Client struct {
	baseURL    string
	market     domain.AccountRef
	httpClient *http.Client
	signer     *crypto.RequestSigner
	now        func() time.Time
}

// New creates a gateway client for a single market.
//
// baseURL is the gateway API root, e.g. "https://gateway.example.com".
// market is the market address all order/depth/settle calls target.
// signer authenticates private endpoints; it must not be nil for trading.
func New(baseURL string, market domain.AccountRef, signer *crypto.RequestSigner, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		market:     market,
		httpClient: &http.Client{Timeout: timeout},
		signer:     signer,
		now:        time.Now,
	}
}

// GetBalance returns the spendable balance of a token account in human
// units. The gateway performs the decimal scaling; decimals is passed so the
// gateway can verify it against the mint.
func (c *Client) GetBalance(ctx context.Context, account domain.AccountRef, decimals int) (decimal.Decimal, error) {
	path := fmt.Sprintf("/v1/accounts/%s/balance?decimals=%d", url.PathEscape(account.String()), decimals)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gateway: get balance %s: %w", account, err)
	}

	var bal apiBalance
	if err := json.Unmarshal(respBody, &bal); err != nil {
		return decimal.Zero, fmt.Errorf("gateway: decode balance: %w", err)
	}
	amount, err := decimal.NewFromString(bal.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("gateway: bad balance amount %q: %w", bal.Amount, err)
	}
	return amount, nil
}

// GetDepth returns an L2 snapshot of one side of the market's book.
func (c *Client) GetDepth(ctx context.Context, side domain.BookSide, limit int) (domain.DepthSnapshot, error) {
	path := fmt.Sprintf("/v1/markets/%s/depth?side=%s&limit=%d",
		url.PathEscape(c.market.String()), side, limit)

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("gateway: get depth %s: %w", side, err)
	}

	var depth apiDepth
	if err := json.Unmarshal(respBody, &depth); err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("gateway: decode depth: %w", err)
	}
	snap, err := depth.toDomain()
	if err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("gateway: depth snapshot: %w", err)
	}
	return snap, nil
}

// PlaceOrder submits an order. A venue refusal surfaces as ErrOrderRejected
// carrying the gateway's message.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderReceipt, error) {
	path := fmt.Sprintf("/v1/markets/%s/orders", url.PathEscape(c.market.String()))
	body := map[string]any{
		"clientId":  req.ClientID,
		"side":      string(req.Side),
		"price":     req.Price.String(),
		"size":      req.Size.String(),
		"payer":     req.Payer.String(),
		"orderType": string(req.Type),
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("gateway: place %s order: %w", req.Side, err)
	}

	var ack apiOrderAck
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("gateway: decode order ack: %w", err)
	}
	if !ack.Success {
		return domain.OrderReceipt{}, fmt.Errorf("gateway: place %s order: %w: %s", req.Side, domain.ErrOrderRejected, ack.ErrorMsg)
	}

	return domain.OrderReceipt{
		OrderID:     ack.OrderID,
		TxSignature: ack.TxSignature,
		PlacedAt:    c.now(),
	}, nil
}

// ListOpenOrders returns the owner's resting orders on the market.
func (c *Client) ListOpenOrders(ctx context.Context, owner domain.AccountRef) ([]domain.OpenOrder, error) {
	path := fmt.Sprintf("/v1/markets/%s/orders?owner=%s",
		url.PathEscape(c.market.String()), url.QueryEscape(owner.String()))

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: list open orders: %w", err)
	}

	var apiOrders []apiOpenOrder
	if err := json.Unmarshal(respBody, &apiOrders); err != nil {
		return nil, fmt.Errorf("gateway: decode open orders: %w", err)
	}

	orders := make([]domain.OpenOrder, 0, len(apiOrders))
	for _, o := range apiOrders {
		order, err := o.toDomain()
		if err != nil {
			return nil, fmt.Errorf("gateway: open orders: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// CancelOrder cancels a single resting order by ID.
func (c *Client) CancelOrder(ctx context.Context, owner domain.AccountRef, orderID string) error {
	path := fmt.Sprintf("/v1/markets/%s/orders/%s?owner=%s",
		url.PathEscape(c.market.String()), url.PathEscape(orderID), url.QueryEscape(owner.String()))

	respBody, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("gateway: cancel order %s: %w", orderID, err)
	}

	var result apiGenericResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("gateway: decode cancel response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("gateway: cancel order %s failed: %s", orderID, result.ErrorMsg)
	}
	return nil
}

// ListOpenOrdersAccounts enumerates the owner's open-orders accounts.
func (c *Client) ListOpenOrdersAccounts(ctx context.Context, owner domain.AccountRef) ([]domain.AccountRef, error) {
	path := fmt.Sprintf("/v1/markets/%s/open-orders-accounts?owner=%s",
		url.PathEscape(c.market.String()), url.QueryEscape(owner.String()))

	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: list open-orders accounts: %w", err)
	}

	var accounts apiOpenOrdersAccounts
	if err := json.Unmarshal(respBody, &accounts); err != nil {
		return nil, fmt.Errorf("gateway: decode open-orders accounts: %w", err)
	}

	refs := make([]domain.AccountRef, 0, len(accounts.Accounts))
	for _, a := range accounts.Accounts {
		refs = append(refs, domain.AccountRef(a))
	}
	return refs, nil
}

// SettleFunds routes matched proceeds from an open-orders account to the
// owner's token accounts. Non-transport failures surface as ErrSettlement.
func (c *Client) SettleFunds(ctx context.Context, owner, openOrders, baseDest, quoteDest domain.AccountRef) error {
	path := fmt.Sprintf("/v1/markets/%s/settle", url.PathEscape(c.market.String()))
	body := map[string]any{
		"owner":      owner.String(),
		"openOrders": openOrders.String(),
		"baseDest":   baseDest.String(),
		"quoteDest":  quoteDest.String(),
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		if errors.Is(err, domain.ErrConnectivity) {
			return fmt.Errorf("gateway: settle %s: %w", openOrders, err)
		}
		return fmt.Errorf("gateway: settle %s: %w: %v", openOrders, domain.ErrSettlement, err)
	}

	var result apiGenericResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("gateway: decode settle response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("gateway: settle %s: %w: %s", openOrders, domain.ErrSettlement, result.ErrorMsg)
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, signs, sends, and reads an HTTP request against the
// gateway. It returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	var bodyStr string

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyStr = string(jsonBody)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.signer != nil {
		for k, v := range c.signer.Headers(c.now().Unix(), method, path, bodyStr) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrConnectivity, err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch {
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrOrderRejected, statusCode, bodyStr)
	case statusCode >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrConnectivity, statusCode, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

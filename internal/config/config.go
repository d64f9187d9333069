// Package config defines the top-level configuration for the flipper agent
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FLIPPER_* environment
// variables.
type Config struct {
	Owner    OwnerConfig    `toml:"owner"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Market   MarketConfig   `toml:"market"`
	Trading  TradingConfig  `toml:"trading"`
	Feed     FeedConfig     `toml:"feed"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// OwnerConfig holds the owner's ed25519 key material.
type OwnerConfig struct {
	// PrivateKey is the hex-encoded key (64-byte private key or 32-byte
	// seed). Prefer EncryptedKeyPath outside of development.
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// GatewayConfig holds the DEX gateway endpoints.
type GatewayConfig struct {
	BaseURL string   `toml:"base_url"`
	WsURL   string   `toml:"ws_url"`
	Timeout duration `toml:"timeout"`
}

// MarketConfig identifies the traded market and the owner's token accounts
// on both legs.
type MarketConfig struct {
	Address       string `toml:"address"`
	BaseSymbol    string `toml:"base_symbol"`
	QuoteSymbol   string `toml:"quote_symbol"`
	BaseAccount   string `toml:"base_account"`
	QuoteAccount  string `toml:"quote_account"`
	BaseDecimals  int    `toml:"base_decimals"`
	QuoteDecimals int    `toml:"quote_decimals"`
}

// TradingConfig holds the loop thresholds and pacing.
type TradingConfig struct {
	// MinBaseBalance is the smallest base holding that triggers a sell.
	MinBaseBalance float64 `toml:"min_base_balance"`
	// MinQuoteBalance is the smallest quote holding that triggers a buy.
	MinQuoteBalance float64 `toml:"min_quote_balance"`
	// DepthLimit is how many book levels each decision inspects.
	DepthLimit int `toml:"depth_limit"`
	// PostDecisionPause separates the buy/sell decision from settlement.
	PostDecisionPause duration `toml:"post_decision_pause"`
	// PostSettlePause separates settlement from the next tick.
	PostSettlePause duration `toml:"post_settle_pause"`
	// OrderType is the venue order type: limit, ioc, or postOnly.
	OrderType string `toml:"order_type"`
}

// FeedConfig controls the optional WebSocket depth feed.
type FeedConfig struct {
	Enabled bool `toml:"enabled"`
	// MaxStaleness bounds how old a streamed snapshot may be before the
	// loop falls back to a REST depth query.
	MaxStaleness duration `toml:"max_staleness"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "3s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. The
// trading thresholds and pacing mirror the agent's original tuning: sell at
// 5000 base units, buy with 10 quote units, 3s/1s pacing, top 10 levels.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			BaseURL: "https://gateway.openbookhq.dev",
			WsURL:   "wss://gateway.openbookhq.dev/v1/ws",
			Timeout: duration{30 * time.Second},
		},
		Market: MarketConfig{
			BaseDecimals:  9,
			QuoteDecimals: 6,
		},
		Trading: TradingConfig{
			MinBaseBalance:    5000,
			MinQuoteBalance:   10,
			DepthLimit:        10,
			PostDecisionPause: duration{3 * time.Second},
			PostSettlePause:   duration{1 * time.Second},
			OrderType:         "limit",
		},
		Feed: FeedConfig{
			Enabled:      false,
			MaxStaleness: duration{2 * time.Second},
		},
		Notify: NotifyConfig{
			Events: []string{"order_placed", "funds_settled", "error"},
		},
		Mode:     "run",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"run":         true,
	"monitor":     true,
	"cancel":      true,
	"settle":      true,
	"encrypt-key": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validOrderTypes enumerates the accepted values for Trading.OrderType.
var validOrderTypes = map[string]bool{
	"limit":    true,
	"ioc":      true,
	"postOnly": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: run, monitor, cancel, settle, encrypt-key)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Owner key material. encrypt-key needs the raw key and a password to
	// encrypt with; every other mode accepts either source.
	if mode == "encrypt-key" {
		if c.Owner.PrivateKey == "" {
			errs = append(errs, "owner: private_key is required for mode encrypt-key")
		}
		if c.Owner.KeyPassword == "" {
			errs = append(errs, "owner: key_password is required for mode encrypt-key")
		}
		if c.Owner.EncryptedKeyPath == "" {
			errs = append(errs, "owner: encrypted_key_path is the output path for mode encrypt-key and must be set")
		}
	} else {
		if c.Owner.PrivateKey == "" && c.Owner.EncryptedKeyPath == "" {
			errs = append(errs, "owner: either private_key or encrypted_key_path must be set")
		}
		if c.Owner.EncryptedKeyPath != "" && c.Owner.PrivateKey == "" && c.Owner.KeyPassword == "" {
			errs = append(errs, "owner: key_password is required when encrypted_key_path is set")
		}
	}

	// Gateway
	if c.Gateway.BaseURL == "" {
		errs = append(errs, "gateway: base_url must not be empty")
	}
	if c.Feed.Enabled && c.Gateway.WsURL == "" {
		errs = append(errs, "gateway: ws_url must not be empty when the feed is enabled")
	}
	if c.Gateway.Timeout.Duration <= 0 {
		errs = append(errs, "gateway: timeout must be positive")
	}

	// Market — not needed when only encrypting a key file.
	if mode != "encrypt-key" {
		if c.Market.Address == "" {
			errs = append(errs, "market: address must not be empty")
		}
		if c.Market.BaseAccount == "" {
			errs = append(errs, "market: base_account must not be empty")
		}
		if c.Market.QuoteAccount == "" {
			errs = append(errs, "market: quote_account must not be empty")
		}
	}
	if c.Market.BaseDecimals < 0 || c.Market.BaseDecimals > 18 {
		errs = append(errs, fmt.Sprintf("market: base_decimals must be 0-18, got %d", c.Market.BaseDecimals))
	}
	if c.Market.QuoteDecimals < 0 || c.Market.QuoteDecimals > 18 {
		errs = append(errs, fmt.Sprintf("market: quote_decimals must be 0-18, got %d", c.Market.QuoteDecimals))
	}

	// Trading
	if c.Trading.MinBaseBalance < 0 {
		errs = append(errs, "trading: min_base_balance must be >= 0")
	}
	if c.Trading.MinQuoteBalance < 0 {
		errs = append(errs, "trading: min_quote_balance must be >= 0")
	}
	if c.Trading.DepthLimit < 1 {
		errs = append(errs, "trading: depth_limit must be >= 1")
	}
	if c.Trading.PostDecisionPause.Duration <= 0 {
		errs = append(errs, "trading: post_decision_pause must be positive")
	}
	if c.Trading.PostSettlePause.Duration <= 0 {
		errs = append(errs, "trading: post_settle_pause must be positive")
	}
	if !validOrderTypes[c.Trading.OrderType] {
		errs = append(errs, fmt.Sprintf("trading: unknown order_type %q (valid: limit, ioc, postOnly)", c.Trading.OrderType))
	}

	// Feed
	if c.Feed.Enabled && c.Feed.MaxStaleness.Duration <= 0 {
		errs = append(errs, "feed: max_staleness must be positive when the feed is enabled")
	}

	// Notify — token and chat ID travel together.
	tg := c.Notify.TelegramToken != ""
	chat := c.Notify.TelegramChatID != ""
	if tg != chat {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must both be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

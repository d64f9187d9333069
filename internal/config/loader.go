package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FLIPPER_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env if present (silently ignore when missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FLIPPER_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Owner ──
	setStr(&cfg.Owner.PrivateKey, "FLIPPER_OWNER_PRIVATE_KEY")
	setStr(&cfg.Owner.EncryptedKeyPath, "FLIPPER_OWNER_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Owner.KeyPassword, "FLIPPER_OWNER_KEY_PASSWORD")

	// ── Gateway ──
	setStr(&cfg.Gateway.BaseURL, "FLIPPER_GATEWAY_BASE_URL")
	setStr(&cfg.Gateway.WsURL, "FLIPPER_GATEWAY_WS_URL")
	setDuration(&cfg.Gateway.Timeout, "FLIPPER_GATEWAY_TIMEOUT")

	// ── Market ──
	setStr(&cfg.Market.Address, "FLIPPER_MARKET_ADDRESS")
	setStr(&cfg.Market.BaseSymbol, "FLIPPER_MARKET_BASE_SYMBOL")
	setStr(&cfg.Market.QuoteSymbol, "FLIPPER_MARKET_QUOTE_SYMBOL")
	setStr(&cfg.Market.BaseAccount, "FLIPPER_MARKET_BASE_ACCOUNT")
	setStr(&cfg.Market.QuoteAccount, "FLIPPER_MARKET_QUOTE_ACCOUNT")
	setInt(&cfg.Market.BaseDecimals, "FLIPPER_MARKET_BASE_DECIMALS")
	setInt(&cfg.Market.QuoteDecimals, "FLIPPER_MARKET_QUOTE_DECIMALS")

	// ── Trading ──
	setFloat64(&cfg.Trading.MinBaseBalance, "FLIPPER_TRADING_MIN_BASE_BALANCE")
	setFloat64(&cfg.Trading.MinQuoteBalance, "FLIPPER_TRADING_MIN_QUOTE_BALANCE")
	setInt(&cfg.Trading.DepthLimit, "FLIPPER_TRADING_DEPTH_LIMIT")
	setDuration(&cfg.Trading.PostDecisionPause, "FLIPPER_TRADING_POST_DECISION_PAUSE")
	setDuration(&cfg.Trading.PostSettlePause, "FLIPPER_TRADING_POST_SETTLE_PAUSE")
	setStr(&cfg.Trading.OrderType, "FLIPPER_TRADING_ORDER_TYPE")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "FLIPPER_FEED_ENABLED")
	setDuration(&cfg.Feed.MaxStaleness, "FLIPPER_FEED_MAX_STALENESS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "FLIPPER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FLIPPER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "FLIPPER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "FLIPPER_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "FLIPPER_MODE")
	setStr(&cfg.LogLevel, "FLIPPER_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

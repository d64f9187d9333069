package app

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/openbookhq/flipper/internal/config"
	"github.com/openbookhq/flipper/internal/crypto"
	"github.com/openbookhq/flipper/internal/domain"
	"github.com/openbookhq/flipper/internal/exchange"
	"github.com/openbookhq/flipper/internal/exchange/gateway"
	"github.com/openbookhq/flipper/internal/feed"
	"github.com/openbookhq/flipper/internal/notify"
	"github.com/openbookhq/flipper/internal/trader"
)

// Dependencies holds everything the mode routines need.
type Dependencies struct {
	Keypair    crypto.Keypair
	Exchange   exchange.Client
	DepthCache *feed.DepthCache // nil when the feed is disabled
	Notifier   *notify.Notifier
}

// Wire constructs the dependency graph from configuration: owner keypair,
// signed gateway client, optional depth cache, and notifier. The returned
// cleanup function releases whatever was acquired.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	keypair, err := crypto.LoadKeypair(crypto.KeyConfig{
		RawPrivateKey:    cfg.Owner.PrivateKey,
		EncryptedKeyPath: cfg.Owner.EncryptedKeyPath,
		KeyPassword:      cfg.Owner.KeyPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load owner key: %w", err)
	}

	signer := crypto.NewRequestSigner(keypair)
	client := gateway.New(
		cfg.Gateway.BaseURL,
		domain.AccountRef(cfg.Market.Address),
		signer,
		cfg.Gateway.Timeout.Duration,
	)

	deps := &Dependencies{
		Keypair:  keypair,
		Exchange: client,
		Notifier: buildNotifier(cfg, logger),
	}
	if cfg.Feed.Enabled {
		deps.DepthCache = feed.NewDepthCache()
	}

	cleanup := func() {}
	return deps, cleanup, nil
}

// buildNotifier assembles the notification senders that have credentials
// configured. With none configured the notifier is a silent fan-out.
func buildNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	return notify.New(senders, cfg.Notify.Events, logger)
}

// traderConfig converts the file configuration into the trader's immutable
// parameters.
func traderConfig(cfg *config.Config, owner domain.AccountRef) trader.Config {
	return trader.Config{
		Owner: owner,
		Market: domain.Market{
			Address:       domain.AccountRef(cfg.Market.Address),
			BaseSymbol:    cfg.Market.BaseSymbol,
			QuoteSymbol:   cfg.Market.QuoteSymbol,
			BaseAccount:   domain.AccountRef(cfg.Market.BaseAccount),
			QuoteAccount:  domain.AccountRef(cfg.Market.QuoteAccount),
			BaseDecimals:  cfg.Market.BaseDecimals,
			QuoteDecimals: cfg.Market.QuoteDecimals,
		},
		MinBaseBalance:    decimal.NewFromFloat(cfg.Trading.MinBaseBalance),
		MinQuoteBalance:   decimal.NewFromFloat(cfg.Trading.MinQuoteBalance),
		DepthLimit:        cfg.Trading.DepthLimit,
		PostDecisionPause: cfg.Trading.PostDecisionPause.Duration,
		PostSettlePause:   cfg.Trading.PostSettlePause.Duration,
		OrderType:         domain.OrderType(cfg.Trading.OrderType),
	}
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelegramSender posts notifications to a chat through the Bot API. The Bot
// API reports failures in-band with ok=false, so Send checks the response
// payload rather than the HTTP status alone.
type TelegramSender struct {
	endpoint string
	chatID   string
	client   *http.Client
}

// NewTelegramSender creates a sender for the given bot token and chat ID.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		endpoint: "https://api.telegram.org/bot" + token + "/sendMessage",
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers title and message as a single Markdown text, title bold.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {fmt.Sprintf("*%s*\n%s", title, message)},
		"parse_mode": {"Markdown"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: post message: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&result); err != nil {
		return fmt.Errorf("telegram: decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: API error (HTTP %d): %s", resp.StatusCode, result.Description)
	}
	return nil
}

func (t *TelegramSender) Name() string { return "telegram" }

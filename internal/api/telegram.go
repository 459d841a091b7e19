package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// RequestLinkToken запрашивает одноразовый токен привязки Telegram-аккаунта
func (c *Client) RequestLinkToken(ctx context.Context, userID int64) (*model.TelegramLinkToken, error) {
	raw, err := c.Post(ctx, "/telegram/link", map[string]int64{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("request link token: %w", err)
	}

	var token model.TelegramLinkToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decode link token: %w", err)
	}
	return &token, nil
}

type confirmLinkRequest struct {
	Token      string `json:"token"`
	TelegramID int64  `json:"telegram_id"`
}

// ConfirmLink подтверждает привязку: токен из deep link + Telegram ID
func (c *Client) ConfirmLink(ctx context.Context, token string, telegramID int64) (*model.User, error) {
	raw, err := c.Post(ctx, "/telegram/confirm", confirmLinkRequest{Token: token, TelegramID: telegramID})
	if err != nil {
		return nil, fmt.Errorf("confirm link: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode linked user: %w", err)
	}
	return &user, nil
}

// UnlinkTelegram отвязывает Telegram-аккаунт
func (c *Client) UnlinkTelegram(ctx context.Context, telegramID int64) error {
	if _, err := c.Post(ctx, "/telegram/unlink", map[string]int64{"telegram_id": telegramID}); err != nil {
		return fmt.Errorf("unlink telegram: %w", err)
	}
	return nil
}

// DeepLink строит ссылку t.me для привязки аккаунта через бота.
// Токен экранируется: он попадает в query-параметр start
func DeepLink(botUsername, token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, url.QueryEscape(token))
}

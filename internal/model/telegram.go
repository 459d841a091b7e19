package model

import "time"

// TelegramLinkToken одноразовый токен привязки Telegram-аккаунта
type TelegramLinkToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired проверяет истёк ли токен
func (t *TelegramLinkToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

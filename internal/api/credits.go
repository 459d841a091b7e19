package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// GetAllCredits возвращает балансы всех пользователей.
// Эндпоинт исторически менял форму ответа, поэтому тело проходит через
// нормализатор и приводится к плоскому списку балансов.
func (c *Client) GetAllCredits(ctx context.Context) ([]model.CreditBalance, error) {
	raw, err := c.Get(ctx, "/credits", nil)
	if err != nil {
		return nil, fmt.Errorf("get credits: %w", err)
	}

	balances, _, err := DecodeCollection[model.CreditBalance](c.logger, "credits", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize credits: %w", err)
	}
	return balances, nil
}

// GetMyBalance возвращает баланс текущего пользователя
func (c *Client) GetMyBalance(ctx context.Context) (*model.CreditBalance, error) {
	raw, err := c.Get(ctx, "/credits/my", nil)
	if err != nil {
		return nil, fmt.Errorf("get my balance: %w", err)
	}

	var balance model.CreditBalance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, fmt.Errorf("decode balance: %w", err)
	}
	return &balance, nil
}

// historyPage страничный ответ /credits/history
type historyPage struct {
	Data []model.CreditHistoryEntry `json:"data"`
	Meta PageMeta                   `json:"meta"`
}

// GetCreditHistory выкачивает историю операций целиком, постранично
func (c *Client) GetCreditHistory(ctx context.Context, userID string) ([]model.CreditHistoryEntry, error) {
	return FetchAllPages(ctx, c.logger, "credits/history", func(ctx context.Context, page int) (Page[model.CreditHistoryEntry], error) {
		query := url.Values{
			"user_id": {userID},
			"page":    {strconv.Itoa(page)},
		}
		raw, err := c.Get(ctx, "/credits/history", query)
		if err != nil {
			return Page[model.CreditHistoryEntry]{}, err
		}

		var p historyPage
		if err := json.Unmarshal(raw, &p); err != nil {
			return Page[model.CreditHistoryEntry]{}, fmt.Errorf("decode history page: %w", err)
		}
		return Page[model.CreditHistoryEntry]{Items: p.Data, Meta: p.Meta}, nil
	})
}

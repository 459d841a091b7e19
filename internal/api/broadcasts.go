package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// GetBroadcastLists возвращает все списки получателей
func (c *Client) GetBroadcastLists(ctx context.Context) ([]model.BroadcastList, error) {
	raw, err := c.Get(ctx, "/broadcasts/lists", nil)
	if err != nil {
		return nil, fmt.Errorf("get broadcast lists: %w", err)
	}

	lists, _, err := DecodeCollection[model.BroadcastList](c.logger, "broadcasts/lists", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize broadcast lists: %w", err)
	}
	return lists, nil
}

type broadcastListRequest struct {
	Name    string  `json:"name"`
	UserIDs []int64 `json:"user_ids"`
}

// CreateBroadcastList создаёт список получателей
func (c *Client) CreateBroadcastList(ctx context.Context, name string, userIDs []int64) (*model.BroadcastList, error) {
	raw, err := c.Post(ctx, "/broadcasts/lists", broadcastListRequest{Name: name, UserIDs: userIDs})
	if err != nil {
		return nil, fmt.Errorf("create broadcast list: %w", err)
	}

	var list model.BroadcastList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode broadcast list: %w", err)
	}
	return &list, nil
}

// UpdateBroadcastList обновляет имя и состав списка
func (c *Client) UpdateBroadcastList(ctx context.Context, id int64, name string, userIDs []int64) error {
	path := fmt.Sprintf("/broadcasts/lists/%d", id)
	if _, err := c.Put(ctx, path, broadcastListRequest{Name: name, UserIDs: userIDs}); err != nil {
		return fmt.Errorf("update broadcast list: %w", err)
	}
	return nil
}

// DeleteBroadcastList удаляет список получателей
func (c *Client) DeleteBroadcastList(ctx context.Context, id int64) error {
	if _, err := c.Delete(ctx, fmt.Sprintf("/broadcasts/lists/%d", id)); err != nil {
		return fmt.Errorf("delete broadcast list: %w", err)
	}
	return nil
}

// GetBroadcasts возвращает рассылки
func (c *Client) GetBroadcasts(ctx context.Context) ([]model.Broadcast, error) {
	raw, err := c.Get(ctx, "/broadcasts", nil)
	if err != nil {
		return nil, fmt.Errorf("get broadcasts: %w", err)
	}

	broadcasts, _, err := DecodeCollection[model.Broadcast](c.logger, "broadcasts", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize broadcasts: %w", err)
	}
	return broadcasts, nil
}

type createBroadcastRequest struct {
	ListID  int64  `json:"list_id"`
	Message string `json:"message"`
}

// CreateBroadcast ставит рассылку в очередь отправки
func (c *Client) CreateBroadcast(ctx context.Context, listID int64, message string) (*model.Broadcast, error) {
	raw, err := c.Post(ctx, "/broadcasts", createBroadcastRequest{ListID: listID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}

	var broadcast model.Broadcast
	if err := json.Unmarshal(raw, &broadcast); err != nil {
		return nil, fmt.Errorf("decode broadcast: %w", err)
	}
	return &broadcast, nil
}

// CancelBroadcast отменяет рассылку, пока она не завершилась.
// Отмена уже отменённой рассылки даёт от сервера "broadcast is not active" —
// вызывающая сторона трактует это как идемпотентный исход.
func (c *Client) CancelBroadcast(ctx context.Context, id int64) error {
	if _, err := c.Post(ctx, fmt.Sprintf("/broadcasts/%d/cancel", id), nil); err != nil {
		return fmt.Errorf("cancel broadcast: %w", err)
	}
	return nil
}
